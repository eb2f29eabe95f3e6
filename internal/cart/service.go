package cart

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/mercadito-app/mercadito-backend/pkg/errors"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

// AddLineInput captures one position being added to the cart.
type AddLineInput struct {
	VendorID       int64
	Key            types.LineKey
	DisplayName    string
	UnitPriceCents *int
	Quantity       int
}

// Service exposes the session cart operations.
type Service interface {
	AddLine(ctx context.Context, actor types.Actor, input AddLineInput) (*Snapshot, error)
	RemoveOneUnit(ctx context.Context, actor types.Actor, key types.LineKey) (*Snapshot, error)
	DeleteLine(ctx context.Context, actor types.Actor, key types.LineKey) (*Snapshot, error)
	Clear(ctx context.Context, actor types.Actor) (*Snapshot, error)
	Get(ctx context.Context, actor types.Actor) (*Snapshot, error)
}

type service struct {
	store *Store
}

// NewService builds the cart service around an in-memory store.
func NewService(store *Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &service{store: store}, nil
}

// AddLine adds quantity to an existing line with the same identity, or
// appends a new line at the end. Carts hold items from a single vendor;
// anything else is a conflict the caller resolves by clearing first.
func (s *service) AddLine(ctx context.Context, actor types.Actor, input AddLineInput) (*Snapshot, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if input.VendorID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	if err := input.Key.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "line identity is invalid")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name is required")
	}
	if input.UnitPriceCents != nil && *input.UnitPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be non-negative")
	}
	if actor.ManagesVendor(input.VendorID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sellers cannot order from their own vendor")
	}

	return s.store.mutate(actor.SessionID, func(c *sessionCart) (*sessionCart, error) {
		if c == nil {
			c = &sessionCart{vendorID: input.VendorID}
		}
		if c.vendorID != input.VendorID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart holds items from another vendor")
		}

		for i := range c.lines {
			if c.lines[i].Key == input.Key {
				c.lines[i].Quantity += input.Quantity
				return c, nil
			}
		}
		c.lines = append(c.lines, types.CartLine{
			Key:            input.Key,
			DisplayName:    input.DisplayName,
			UnitPriceCents: input.UnitPriceCents,
			Quantity:       input.Quantity,
		})
		return c, nil
	})
}

// RemoveOneUnit decrements the line's quantity; the line disappears
// when its last unit goes.
func (s *service) RemoveOneUnit(ctx context.Context, actor types.Actor, key types.LineKey) (*Snapshot, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if err := key.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "line identity is invalid")
	}

	return s.store.mutate(actor.SessionID, func(c *sessionCart) (*sessionCart, error) {
		if c == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line is not in the cart")
		}
		for i := range c.lines {
			if c.lines[i].Key != key {
				continue
			}
			if c.lines[i].Quantity <= 1 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			} else {
				c.lines[i].Quantity--
			}
			return c, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line is not in the cart")
	})
}

// DeleteLine removes the whole line regardless of quantity.
func (s *service) DeleteLine(ctx context.Context, actor types.Actor, key types.LineKey) (*Snapshot, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if err := key.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "line identity is invalid")
	}

	return s.store.mutate(actor.SessionID, func(c *sessionCart) (*sessionCart, error) {
		if c == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line is not in the cart")
		}
		for i := range c.lines {
			if c.lines[i].Key == key {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
				return c, nil
			}
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line is not in the cart")
	})
}

// Clear empties the session cart.
func (s *service) Clear(ctx context.Context, actor types.Actor) (*Snapshot, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	return s.store.mutate(actor.SessionID, func(c *sessionCart) (*sessionCart, error) {
		return nil, nil
	})
}

// Get returns the current cart snapshot, empty when nothing was added.
func (s *service) Get(ctx context.Context, actor types.Actor) (*Snapshot, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	return s.store.view(actor.SessionID), nil
}

func validateActor(actor types.Actor) error {
	if strings.TrimSpace(actor.SessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if strings.TrimSpace(actor.UserID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !actor.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor role is invalid")
	}
	return nil
}
