package guard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mercadito-app/mercadito-backend/internal/cart"
	pkgerrors "github.com/mercadito-app/mercadito-backend/pkg/errors"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

// Decision is the user's answer to the discard confirmation.
type Decision string

const (
	DecisionStay    Decision = "stay"
	DecisionDiscard Decision = "discard"
)

// Intent is a navigation the guard suppressed. Source distinguishes
// independent triggers (back action, section switch); Target is the
// opaque destination the client replays after a discard.
type Intent struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Outcome reports what happened to a navigation attempt.
type Outcome struct {
	// Proceed is true when the navigation may continue immediately
	// because nothing would be lost.
	Proceed bool
	// Intercepted is true when this attempt was suppressed and now
	// awaits a decision.
	Intercepted bool
	// Ignored is true when another intent was already pending; the
	// attempt is dropped, not queued.
	Ignored bool
}

// Resolution is the answer to a Resolve call. Replay carries the
// suppressed intent back to the client after a discard so the original
// navigation can complete.
type Resolution struct {
	Decision Decision
	Replay   *Intent
}

type cartReader interface {
	Get(ctx context.Context, actor types.Actor) (*cart.Snapshot, error)
	Clear(ctx context.Context, actor types.Actor) (*cart.Snapshot, error)
}

// Service tracks at most one pending leave-intent per session and
// forces an explicit stay-or-discard decision while the cart holds
// anything.
type Service interface {
	Intercept(ctx context.Context, actor types.Actor, intent Intent) (*Outcome, error)
	Resolve(ctx context.Context, actor types.Actor, decision Decision) (*Resolution, error)
	Pending(ctx context.Context, actor types.Actor) (*Intent, error)
}

type service struct {
	carts cartReader

	mu      sync.Mutex
	pending map[string]Intent
}

// NewService builds the abandonment guard.
func NewService(carts cartReader) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart reader required")
	}
	return &service{
		carts:   carts,
		pending: map[string]Intent{},
	}, nil
}

// Intercept checks whether a navigation away may proceed. A non-empty
// cart suppresses it; a second trigger while one is pending is ignored
// so two navigation sources cannot double-fire.
func (s *service) Intercept(ctx context.Context, actor types.Actor, intent Intent) (*Outcome, error) {
	if strings.TrimSpace(intent.Target) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "navigation target is required")
	}

	snapshot, err := s.carts.Get(ctx, actor)
	if err != nil {
		return nil, err
	}
	if snapshot.ItemCount == 0 {
		return &Outcome{Proceed: true}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pending[actor.SessionID]; exists {
		return &Outcome{Ignored: true}, nil
	}
	s.pending[actor.SessionID] = intent
	return &Outcome{Intercepted: true}, nil
}

// Resolve answers the pending intent. Stay cancels the navigation and
// keeps the cart; discard clears the cart and hands the suppressed
// intent back for replay. Either way the slot is freed.
func (s *service) Resolve(ctx context.Context, actor types.Actor, decision Decision) (*Resolution, error) {
	if decision != DecisionStay && decision != DecisionDiscard {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be stay or discard")
	}

	s.mu.Lock()
	intent, exists := s.pending[actor.SessionID]
	if exists {
		delete(s.pending, actor.SessionID)
	}
	s.mu.Unlock()

	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no navigation is awaiting a decision")
	}

	if decision == DecisionStay {
		return &Resolution{Decision: DecisionStay}, nil
	}

	if _, err := s.carts.Clear(ctx, actor); err != nil {
		// The slot stays free; the next leave attempt re-intercepts.
		return nil, err
	}
	return &Resolution{Decision: DecisionDiscard, Replay: &intent}, nil
}

// Pending returns the currently suppressed intent, if any.
func (s *service) Pending(ctx context.Context, actor types.Actor) (*Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, exists := s.pending[actor.SessionID]
	if !exists {
		return nil, nil
	}
	return &intent, nil
}
