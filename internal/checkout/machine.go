package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/atelier-bot/internal/session"
	pkgerrors "github.com/angelmondragon/atelier-bot/pkg/errors"
)

// Outcome tells the caller what to prompt next.
type Outcome int

const (
	// OutcomeIgnored means no checkout is active; the input belongs elsewhere.
	OutcomeIgnored Outcome = iota
	OutcomePromptName
	OutcomePromptPhone
	OutcomeInvalidPhone
	OutcomePromptAddress
	// OutcomeReady means every detail is collected and the order can be finalized.
	OutcomeReady
)

// Result is the state after handling one input.
type Result struct {
	Outcome  Outcome
	Checkout Checkout
}

// Machine drives NONE -> NAME -> PHONE -> ADDRESS per session.
type Machine interface {
	Start(ctx context.Context, sessionID int64) (Result, error)
	HandleText(ctx context.Context, sessionID int64, text string) (Result, error)
	HandleContact(ctx context.Context, sessionID int64, phone string) (Result, error)
	Get(ctx context.Context, sessionID int64) (Checkout, error)
	Cancel(ctx context.Context, sessionID int64) error
}

type machine struct {
	store session.Store[Checkout]
}

// NewMachine wires the checkout session store.
func NewMachine(store session.Store[Checkout]) (Machine, error) {
	if store == nil {
		return nil, fmt.Errorf("checkout session store required")
	}
	return &machine{store: store}, nil
}

// Start enters checkout at NAME, dropping any stale details.
func (m *machine) Start(ctx context.Context, sessionID int64) (Result, error) {
	c := Checkout{Stage: StageName}
	if err := m.save(ctx, sessionID, c); err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomePromptName, Checkout: c}, nil
}

func (m *machine) HandleText(ctx context.Context, sessionID int64, text string) (Result, error) {
	c, err := m.Get(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	text = strings.TrimSpace(text)

	switch c.Stage {
	case StageName:
		if text == "" {
			return Result{Outcome: OutcomePromptName, Checkout: c}, nil
		}
		c.Name = text
		c.Stage = StagePhone
		return m.advance(ctx, sessionID, c, OutcomePromptPhone)
	case StagePhone:
		if !ValidPhone(text) {
			return Result{Outcome: OutcomeInvalidPhone, Checkout: c}, nil
		}
		c.Phone = text
		c.Stage = StageAddress
		return m.advance(ctx, sessionID, c, OutcomePromptAddress)
	case StageAddress:
		if text == "" {
			return Result{Outcome: OutcomePromptAddress, Checkout: c}, nil
		}
		c.Address = text
		return m.advance(ctx, sessionID, c, OutcomeReady)
	}
	return Result{Outcome: OutcomeIgnored, Checkout: c}, nil
}

// HandleContact takes a shared phone number. Outside checkout it starts one; inside it
// fills the phone and jumps to ADDRESS when the name is known, else back to NAME.
func (m *machine) HandleContact(ctx context.Context, sessionID int64, phone string) (Result, error) {
	c, err := m.Get(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	if !c.Active() {
		return m.Start(ctx, sessionID)
	}

	c.Phone = strings.TrimSpace(phone)
	if c.Name == "" {
		c.Stage = StageName
		return m.advance(ctx, sessionID, c, OutcomePromptName)
	}
	c.Stage = StageAddress
	return m.advance(ctx, sessionID, c, OutcomePromptAddress)
}

func (m *machine) Get(ctx context.Context, sessionID int64) (Checkout, error) {
	c, ok, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return Checkout{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout")
	}
	if !ok {
		return Checkout{}, nil
	}
	return c, nil
}

// Cancel discards any checkout in progress.
func (m *machine) Cancel(ctx context.Context, sessionID int64) error {
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear checkout")
	}
	return nil
}

func (m *machine) advance(ctx context.Context, sessionID int64, c Checkout, outcome Outcome) (Result, error) {
	if err := m.save(ctx, sessionID, c); err != nil {
		return Result{}, err
	}
	return Result{Outcome: outcome, Checkout: c}, nil
}

func (m *machine) save(ctx context.Context, sessionID int64, c Checkout) error {
	if err := m.store.Put(ctx, sessionID, c); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout")
	}
	return nil
}
