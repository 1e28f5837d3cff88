package cart

import (
	"context"
	"fmt"

	"github.com/angelmondragon/atelier-bot/internal/session"
	pkgerrors "github.com/angelmondragon/atelier-bot/pkg/errors"
)

// Service exposes per-session cart operations.
type Service interface {
	Add(ctx context.Context, sessionID int64, item Item) error
	RemoveAt(ctx context.Context, sessionID int64, index int) error
	Clear(ctx context.Context, sessionID int64) error
	Total(ctx context.Context, sessionID int64) (int64, error)
	Get(ctx context.Context, sessionID int64) (Cart, error)
}

type service struct {
	store session.Store[Cart]
}

// NewService wires the cart store.
func NewService(store session.Store[Cart]) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart session store required")
	}
	return &service{store: store}, nil
}

func (s *service) load(ctx context.Context, sessionID int64) (Cart, error) {
	c, _, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return Cart{Items: c.Snapshot()}, nil
}

func (s *service) save(ctx context.Context, sessionID int64, c Cart) error {
	if err := s.store.Put(ctx, sessionID, c); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

func (s *service) Add(ctx context.Context, sessionID int64, item Item) error {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	c.Add(item)
	return s.save(ctx, sessionID, c)
}

func (s *service) RemoveAt(ctx context.Context, sessionID int64, index int) error {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if !c.RemoveAt(index) {
		return nil
	}
	return s.save(ctx, sessionID, c)
}

func (s *service) Clear(ctx context.Context, sessionID int64) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) Total(ctx context.Context, sessionID int64) (int64, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return c.Total(), nil
}

func (s *service) Get(ctx context.Context, sessionID int64) (Cart, error) {
	return s.load(ctx, sessionID)
}
