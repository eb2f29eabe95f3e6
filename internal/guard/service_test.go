package guard

import (
	"context"
	"testing"

	"github.com/mercadito-app/mercadito-backend/internal/cart"
	"github.com/mercadito-app/mercadito-backend/pkg/enums"
	pkgerrors "github.com/mercadito-app/mercadito-backend/pkg/errors"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

type stubCarts struct {
	itemCount int
	cleared   bool
}

func (s *stubCarts) Get(ctx context.Context, actor types.Actor) (*cart.Snapshot, error) {
	return &cart.Snapshot{SessionID: actor.SessionID, ItemCount: s.itemCount}, nil
}

func (s *stubCarts) Clear(ctx context.Context, actor types.Actor) (*cart.Snapshot, error) {
	s.cleared = true
	s.itemCount = 0
	return &cart.Snapshot{SessionID: actor.SessionID}, nil
}

func actor() types.Actor {
	return types.Actor{SessionID: "sess-1", UserID: "buyer-1", Role: enums.ActorRoleBuyer}
}

func newTestGuard(t *testing.T, carts *stubCarts) Service {
	t.Helper()
	svc, err := NewService(carts)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestInterceptEmptyCartProceeds(t *testing.T) {
	svc := newTestGuard(t, &stubCarts{itemCount: 0})

	outcome, err := svc.Intercept(context.Background(), actor(), Intent{Source: "back", Target: "home"})
	if err != nil {
		t.Fatalf("intercept: %v", err)
	}
	if !outcome.Proceed || outcome.Intercepted {
		t.Fatalf("expected free pass, got %+v", outcome)
	}
}

func TestInterceptNonEmptyCartSuppressesNavigation(t *testing.T) {
	svc := newTestGuard(t, &stubCarts{itemCount: 2})

	outcome, err := svc.Intercept(context.Background(), actor(), Intent{Source: "back", Target: "home"})
	if err != nil {
		t.Fatalf("intercept: %v", err)
	}
	if !outcome.Intercepted || outcome.Proceed {
		t.Fatalf("expected interception, got %+v", outcome)
	}

	pending, err := svc.Pending(context.Background(), actor())
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending == nil || pending.Target != "home" {
		t.Fatalf("expected pending intent, got %+v", pending)
	}
}

func TestInterceptSecondTriggerIgnoredWhilePending(t *testing.T) {
	svc := newTestGuard(t, &stubCarts{itemCount: 2})

	if _, err := svc.Intercept(context.Background(), actor(), Intent{Source: "back", Target: "home"}); err != nil {
		t.Fatalf("first intercept: %v", err)
	}

	// A concurrent tab switch must not replace or queue behind the
	// pending back action.
	outcome, err := svc.Intercept(context.Background(), actor(), Intent{Source: "tab", Target: "profile"})
	if err != nil {
		t.Fatalf("second intercept: %v", err)
	}
	if !outcome.Ignored {
		t.Fatalf("expected second trigger ignored, got %+v", outcome)
	}

	pending, _ := svc.Pending(context.Background(), actor())
	if pending == nil || pending.Target != "home" {
		t.Fatalf("expected original intent kept, got %+v", pending)
	}
}

func TestResolveStayKeepsCartAndCancelsNavigation(t *testing.T) {
	carts := &stubCarts{itemCount: 2}
	svc := newTestGuard(t, carts)

	if _, err := svc.Intercept(context.Background(), actor(), Intent{Source: "back", Target: "home"}); err != nil {
		t.Fatalf("intercept: %v", err)
	}

	res, err := svc.Resolve(context.Background(), actor(), DecisionStay)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Replay != nil {
		t.Fatal("stay must not replay the navigation")
	}
	if carts.cleared {
		t.Fatal("stay must keep the cart")
	}

	// The slot is free again for the next attempt.
	outcome, err := svc.Intercept(context.Background(), actor(), Intent{Source: "tab", Target: "profile"})
	if err != nil || !outcome.Intercepted {
		t.Fatalf("expected fresh interception, got %+v err=%v", outcome, err)
	}
}

func TestResolveDiscardClearsCartAndReplaysIntent(t *testing.T) {
	carts := &stubCarts{itemCount: 2}
	svc := newTestGuard(t, carts)

	if _, err := svc.Intercept(context.Background(), actor(), Intent{Source: "back", Target: "home"}); err != nil {
		t.Fatalf("intercept: %v", err)
	}

	res, err := svc.Resolve(context.Background(), actor(), DecisionDiscard)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !carts.cleared {
		t.Fatal("discard must clear the cart")
	}
	if res.Replay == nil || res.Replay.Target != "home" || res.Replay.Source != "back" {
		t.Fatalf("expected original intent replayed, got %+v", res.Replay)
	}

	// Cart is now empty, so the replayed navigation passes through.
	outcome, err := svc.Intercept(context.Background(), actor(), Intent{Source: "back", Target: "home"})
	if err != nil || !outcome.Proceed {
		t.Fatalf("expected free pass after discard, got %+v err=%v", outcome, err)
	}
}

func TestResolveWithoutPendingIntent(t *testing.T) {
	svc := newTestGuard(t, &stubCarts{itemCount: 2})

	_, err := svc.Resolve(context.Background(), actor(), DecisionStay)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolveValidatesDecision(t *testing.T) {
	svc := newTestGuard(t, &stubCarts{itemCount: 2})

	_, err := svc.Resolve(context.Background(), actor(), Decision("maybe"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
