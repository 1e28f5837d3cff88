package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLockerSerialisesSameSession(t *testing.T) {
	l := NewLocker()
	var inside int32
	var overlap int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(1)
			defer unlock()
			if atomic.AddInt32(&inside, 1) > 1 {
				atomic.StoreInt32(&overlap, 1)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	if overlap != 0 {
		t.Fatal("two handlers for the same session ran concurrently")
	}
	if n := l.held(); n != 0 {
		t.Fatalf("expected lock table to drain, %d entries left", n)
	}
}

func TestLockerAllowsOtherSessions(t *testing.T) {
	l := NewLocker()
	unlock := l.Lock(1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		release := l.Lock(2)
		release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a different session was blocked by session 1")
	}
}

func TestLockerUnlockIsIdempotent(t *testing.T) {
	l := NewLocker()
	unlock := l.Lock(5)
	unlock()
	unlock()

	acquired := make(chan struct{})
	go func() {
		release := l.Lock(5)
		release()
		close(acquired)
	}()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock was not released")
	}
}
