package controllers

import (
	"net/http"
	"time"

	"github.com/mercadito-app/mercadito-backend/api/responses"
	"github.com/mercadito-app/mercadito-backend/api/validators"
	checkoutsvc "github.com/mercadito-app/mercadito-backend/internal/checkout"
	"github.com/mercadito-app/mercadito-backend/pkg/backend"
	"github.com/mercadito-app/mercadito-backend/pkg/enums"
	"github.com/mercadito-app/mercadito-backend/pkg/logger"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

type quoteRequest struct {
	DeliveryMode    string  `json:"delivery_mode" validate:"required,oneof=delivery pickup"`
	DeliveryAddress *string `json:"delivery_address,omitempty" validate:"omitempty,max=300"`
	CouponCode      *string `json:"coupon_code,omitempty" validate:"omitempty,max=40"`
}

type submitRequest struct {
	quoteRequest
	BuyerPhone *string `json:"buyer_phone,omitempty" validate:"omitempty,max=32"`
}

type quoteResponse struct {
	VendorID         int64           `json:"vendor_id"`
	Lines            types.CartLines `json:"lines"`
	SubtotalCents    int             `json:"subtotal_cents"`
	DeliveryFeeCents int             `json:"delivery_fee_cents"`
	DiscountCents    int             `json:"discount_cents"`
	TotalCents       int             `json:"total_cents"`
	DistanceKm       *float64        `json:"distance_km,omitempty"`
	CouponCode       *string         `json:"coupon_code,omitempty"`
}

type orderResponse struct {
	ID               string          `json:"id"`
	VendorID         int64           `json:"vendor_id"`
	Lines            types.CartLines `json:"lines"`
	DeliveryMode     string          `json:"delivery_mode"`
	DeliveryAddress  *string         `json:"delivery_address,omitempty"`
	SubtotalCents    int             `json:"subtotal_cents"`
	DeliveryFeeCents int             `json:"delivery_fee_cents"`
	DiscountCents    int             `json:"discount_cents"`
	TotalCents       int             `json:"total_cents"`
	CouponCode       *string         `json:"coupon_code,omitempty"`
	Status           string          `json:"status"`
	EtaMinutes       *int            `json:"eta_minutes,omitempty"`
	RejectionReason  *string         `json:"rejection_reason,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func newOrderResponse(o *backend.Order) orderResponse {
	return orderResponse{
		ID:               o.ID,
		VendorID:         o.VendorID,
		Lines:            o.Lines,
		DeliveryMode:     string(o.DeliveryMode),
		DeliveryAddress:  o.DeliveryAddress,
		SubtotalCents:    o.SubtotalCents,
		DeliveryFeeCents: o.DeliveryFeeCents,
		DiscountCents:    o.DiscountCents,
		TotalCents:       o.TotalCents,
		CouponCode:       o.CouponCode,
		Status:           string(o.Status),
		EtaMinutes:       o.EtaMinutes,
		RejectionReason:  o.RejectionReason,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func newOrderListResponse(orders []backend.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, newOrderResponse(&orders[i]))
	}
	return out
}

// CheckoutQuote prices the current cart without submitting anything.
func CheckoutQuote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body quoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), actor, checkoutsvc.QuoteInput{
			DeliveryMode:    enums.DeliveryMode(body.DeliveryMode),
			DeliveryAddress: body.DeliveryAddress,
			CouponCode:      body.CouponCode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quoteResponse{
			VendorID:         quote.VendorID,
			Lines:            quote.Lines,
			SubtotalCents:    quote.SubtotalCents,
			DeliveryFeeCents: quote.DeliveryFeeCents,
			DiscountCents:    quote.DiscountCents,
			TotalCents:       quote.TotalCents,
			DistanceKm:       quote.DistanceKm,
			CouponCode:       quote.CouponCode,
		})
	}
}

// CheckoutSubmit assembles and submits the order, clearing the cart on
// success.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body submitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Submit(r.Context(), actor, checkoutsvc.SubmitInput{
			QuoteInput: checkoutsvc.QuoteInput{
				DeliveryMode:    enums.DeliveryMode(body.DeliveryMode),
				DeliveryAddress: body.DeliveryAddress,
				CouponCode:      body.CouponCode,
			},
			BuyerPhone: body.BuyerPhone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}
