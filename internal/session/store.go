// Package session holds per-session conversational state behind an injectable store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/atelier-bot/pkg/redis"
)

// Namespaces used by the conversational components.
const (
	NamespaceCart     = "cart"
	NamespaceCheckout = "checkout"
	NamespacePending  = "pending"
)

// Store keeps one value of T per session identity.
type Store[T any] interface {
	Get(ctx context.Context, id int64) (T, bool, error)
	Put(ctx context.Context, id int64, value T) error
	Delete(ctx context.Context, id int64) error
}

// MemoryStore is a process-local Store; state is lost on restart.
type MemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[int64]T
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{items: map[int64]T{}}
}

func (s *MemoryStore[T]) Get(_ context.Context, id int64) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[id]
	return v, ok, nil
}

func (s *MemoryStore[T]) Put(_ context.Context, id int64, value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = value
	return nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

type keyValue interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionKey(namespace string, sessionID int64) string
}

// RedisStore persists JSON-encoded session values in redis.
type RedisStore[T any] struct {
	kv        keyValue
	namespace string
	ttl       time.Duration
}

// NewRedisStore builds a redis-backed store for one namespace. A zero ttl keeps keys forever.
func NewRedisStore[T any](kv keyValue, namespace string, ttl time.Duration) (*RedisStore[T], error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if namespace == "" {
		return nil, fmt.Errorf("session namespace required")
	}
	return &RedisStore[T]{kv: kv, namespace: namespace, ttl: ttl}, nil
}

func (s *RedisStore[T]) Get(ctx context.Context, id int64) (T, bool, error) {
	var zero T
	raw, err := s.kv.Get(ctx, s.kv.SessionKey(s.namespace, id))
	if errors.Is(err, redis.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("load %s session %d: %w", s.namespace, id, err)
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return zero, false, fmt.Errorf("decode %s session %d: %w", s.namespace, id, err)
	}
	return v, true, nil
}

func (s *RedisStore[T]) Put(ctx context.Context, id int64, value T) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s session %d: %w", s.namespace, id, err)
	}
	if err := s.kv.Set(ctx, s.kv.SessionKey(s.namespace, id), payload, s.ttl); err != nil {
		return fmt.Errorf("save %s session %d: %w", s.namespace, id, err)
	}
	return nil
}

func (s *RedisStore[T]) Delete(ctx context.Context, id int64) error {
	if err := s.kv.Del(ctx, s.kv.SessionKey(s.namespace, id)); err != nil {
		return fmt.Errorf("delete %s session %d: %w", s.namespace, id, err)
	}
	return nil
}
