package controllers

import (
	"net/http"
	"time"

	"github.com/mercadito-app/mercadito-backend/api/middleware"
	"github.com/mercadito-app/mercadito-backend/api/responses"
	"github.com/mercadito-app/mercadito-backend/api/validators"
	cartsvc "github.com/mercadito-app/mercadito-backend/internal/cart"
	pkgerrors "github.com/mercadito-app/mercadito-backend/pkg/errors"
	"github.com/mercadito-app/mercadito-backend/pkg/logger"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

type lineKeyBody struct {
	Kind      string `json:"kind" validate:"required,oneof=catalog synthetic"`
	CatalogID string `json:"catalog_id,omitempty"`
	Category  string `json:"category,omitempty"`
	Position  int    `json:"position,omitempty"`
	Name      string `json:"name,omitempty"`
}

func (b lineKeyBody) toKey() types.LineKey {
	return types.LineKey{
		Kind:      types.LineKeyKind(b.Kind),
		CatalogID: b.CatalogID,
		Category:  b.Category,
		Position:  b.Position,
		Name:      b.Name,
	}
}

type addLineRequest struct {
	VendorID       int64       `json:"vendor_id" validate:"required,gt=0"`
	Key            lineKeyBody `json:"key" validate:"required"`
	DisplayName    string      `json:"display_name" validate:"required,max=200"`
	UnitPriceCents *int        `json:"unit_price_cents,omitempty"`
	Quantity       int         `json:"quantity" validate:"required,gt=0"`
}

type lineKeyRequest struct {
	Key lineKeyBody `json:"key" validate:"required"`
}

type cartResponse struct {
	SessionID     string          `json:"session_id"`
	VendorID      int64           `json:"vendor_id"`
	Lines         types.CartLines `json:"lines"`
	SubtotalCents int             `json:"subtotal_cents"`
	ItemCount     int             `json:"item_count"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func newCartResponse(s *cartsvc.Snapshot) cartResponse {
	return cartResponse{
		SessionID:     s.SessionID,
		VendorID:      s.VendorID,
		Lines:         s.Lines,
		SubtotalCents: s.SubtotalCents,
		ItemCount:     s.ItemCount,
		UpdatedAt:     s.UpdatedAt,
	}
}

// CartFetch returns the session cart, empty carts included.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Get(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(snapshot))
	}
}

// CartAddLine adds units of an item, merging into an existing line with
// the same identity.
func CartAddLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addLineRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.AddLine(r.Context(), actor, cartsvc.AddLineInput{
			VendorID:       body.VendorID,
			Key:            body.Key.toKey(),
			DisplayName:    validators.SanitizeString(body.DisplayName, 200),
			UnitPriceCents: body.UnitPriceCents,
			Quantity:       body.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(snapshot))
	}
}

// CartDecrementLine removes one unit, dropping the line at zero.
func CartDecrementLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body lineKeyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.RemoveOneUnit(r.Context(), actor, body.Key.toKey())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(snapshot))
	}
}

// CartDeleteLine removes a whole line regardless of quantity.
func CartDeleteLine(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body lineKeyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.DeleteLine(r.Context(), actor, body.Key.toKey())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(snapshot))
	}
}

// CartClear empties the session cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Clear(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(snapshot))
	}
}

func actorFromRequest(r *http.Request) (types.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return types.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return actor, nil
}
