package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mercadito-app/mercadito-backend/api/responses"
	"github.com/mercadito-app/mercadito-backend/api/validators"
	orderssvc "github.com/mercadito-app/mercadito-backend/internal/orders"
	"github.com/mercadito-app/mercadito-backend/pkg/backend"
	pkgerrors "github.com/mercadito-app/mercadito-backend/pkg/errors"
	"github.com/mercadito-app/mercadito-backend/pkg/logger"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

type confirmRequest struct {
	EtaMinutes int `json:"eta_minutes" validate:"required,gt=0"`
}

type rejectRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=300"`
}

func orderIDFromRequest(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return id, nil
}

// OrderDetail fetches one order, falling back to the local mirror when
// the backend is unreachable.
func OrderDetail(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, orderID, err := actorAndOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrdersMine lists the buyer's orders.
func OrdersMine(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListMine(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(orders))
	}
}

// OrdersReceived lists the orders placed against the seller's vendor.
func OrdersReceived(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListReceived(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(orders))
	}
}

// OrderConfirm is the seller accepting a pending order with an ETA.
func OrderConfirm(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, orderID, err := actorAndOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body confirmRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Confirm(r.Context(), actor, orderID, body.EtaMinutes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderReject is the seller declining a pending order.
func OrderReject(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, orderID, err := actorAndOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rejectRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Reject(r.Context(), actor, orderID, body.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderCancel is the buyer withdrawing an order before delivery.
func OrderCancel(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(logg, func(r *http.Request, actor types.Actor, orderID string) (*backend.Order, error) {
		return svc.Cancel(r.Context(), actor, orderID)
	})
}

// OrderAckRejection is the buyer acknowledging a rejection.
func OrderAckRejection(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(logg, func(r *http.Request, actor types.Actor, orderID string) (*backend.Order, error) {
		return svc.AckRejection(r.Context(), actor, orderID)
	})
}

// OrderAckCancellation is the seller acknowledging a cancellation.
func OrderAckCancellation(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(logg, func(r *http.Request, actor types.Actor, orderID string) (*backend.Order, error) {
		return svc.AckCancellation(r.Context(), actor, orderID)
	})
}

// OrderConfirmDelivery is the buyer marking a confirmed order received.
func OrderConfirmDelivery(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(logg, func(r *http.Request, actor types.Actor, orderID string) (*backend.Order, error) {
		return svc.ConfirmDelivery(r.Context(), actor, orderID)
	})
}

func transitionHandler(logg *logger.Logger, call func(r *http.Request, actor types.Actor, orderID string) (*backend.Order, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, orderID, err := actorAndOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := call(r, actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

func actorAndOrderID(r *http.Request) (types.Actor, string, error) {
	actor, err := actorFromRequest(r)
	if err != nil {
		return types.Actor{}, "", err
	}
	orderID, err := orderIDFromRequest(r)
	if err != nil {
		return types.Actor{}, "", err
	}
	return actor, orderID, nil
}
