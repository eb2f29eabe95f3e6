package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mercadito-app/mercadito-backend/pkg/backend"
	"github.com/mercadito-app/mercadito-backend/pkg/db/models"
	"github.com/mercadito-app/mercadito-backend/pkg/enums"
	pkgerrors "github.com/mercadito-app/mercadito-backend/pkg/errors"
	"github.com/mercadito-app/mercadito-backend/pkg/logger"
	"github.com/mercadito-app/mercadito-backend/pkg/metrics"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

type remoteOrders interface {
	GetOrder(ctx context.Context, orderID string) (*backend.Order, error)
	Confirm(ctx context.Context, orderID string, etaMinutes int) (*backend.Order, error)
	UpdateStatus(ctx context.Context, orderID string, req backend.StatusRequest) (*backend.Order, error)
	AckRejection(ctx context.Context, orderID string) (*backend.Order, error)
	AckCancellation(ctx context.Context, orderID string) (*backend.Order, error)
	AckDelivery(ctx context.Context, orderID string) (*backend.Order, error)
	ListMine(ctx context.Context, buyerUserID string) ([]backend.Order, error)
	ListReceived(ctx context.Context, vendorID int64) ([]backend.Order, error)
}

type mirrorStore interface {
	ApplyStatus(ctx context.Context, id string, status string, etaMinutes *int, rejectionReason *string) error
	FindByID(ctx context.Context, id string) (*models.OrderMirror, error)
	ListByBuyer(ctx context.Context, buyerUserID string, limit int) ([]models.OrderMirror, error)
	ListByVendor(ctx context.Context, vendorID int64, limit int) ([]models.OrderMirror, error)
}

type inFlightLocker interface {
	AcquireInFlight(ctx context.Context, id string, ttl time.Duration) (bool, error)
	ReleaseInFlight(ctx context.Context, id string) error
}

// Service drives the order lifecycle. Every transition is a remote
// call; the local mirror only ever adopts what the backend returned.
type Service interface {
	Confirm(ctx context.Context, actor types.Actor, orderID string, etaMinutes int) (*backend.Order, error)
	Reject(ctx context.Context, actor types.Actor, orderID string, reason *string) (*backend.Order, error)
	Cancel(ctx context.Context, actor types.Actor, orderID string) (*backend.Order, error)
	AckRejection(ctx context.Context, actor types.Actor, orderID string) (*backend.Order, error)
	AckCancellation(ctx context.Context, actor types.Actor, orderID string) (*backend.Order, error)
	ConfirmDelivery(ctx context.Context, actor types.Actor, orderID string) (*backend.Order, error)
	Get(ctx context.Context, actor types.Actor, orderID string) (*backend.Order, error)
	ListMine(ctx context.Context, actor types.Actor) ([]backend.Order, error)
	ListReceived(ctx context.Context, actor types.Actor) ([]backend.Order, error)
}

type service struct {
	remote      remoteOrders
	mirror      mirrorStore
	locker      inFlightLocker
	inFlightTTL time.Duration
	log         *logger.Logger
	metrics     *metrics.OrderMetrics
}

// NewService builds the order lifecycle service.
func NewService(remote remoteOrders, mirror mirrorStore, locker inFlightLocker, inFlightTTL time.Duration, log *logger.Logger, m *metrics.OrderMetrics) (Service, error) {
	if remote == nil {
		return nil, fmt.Errorf("remote order client required")
	}
	if mirror == nil {
		return nil, fmt.Errorf("order mirror store required")
	}
	if locker == nil {
		return nil, fmt.Errorf("in-flight locker required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if inFlightTTL <= 0 {
		inFlightTTL = 30 * time.Second
	}
	return &service{
		remote:      remote,
		mirror:      mirror,
		locker:      locker,
		inFlightTTL: inFlightTTL,
		log:         log,
		metrics:     m,
	}, nil
}

func (s *service) Confirm(ctx context.Context, actor types.Actor, orderID string, etaMinutes int) (*backend.Order, error) {
	if etaMinutes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "eta minutes must be a positive integer")
	}
	return s.transition(ctx, actor, orderID, ActionConfirm, func(ctx context.Context) (*backend.Order, error) {
		return s.remote.Confirm(ctx, orderID, etaMinutes)
	})
}

func (s *service) Reject(ctx context.Context, actor types.Actor, orderID string, reason *string) (*backend.Order, error) {
	return s.transition(ctx, actor, orderID, ActionReject, func(ctx context.Context) (*backend.Order, error) {
		return s.remote.UpdateStatus(ctx, orderID, backend.StatusRequest{
			Status:          enums.OrderStatusRejectedPendingAck,
			RejectionReason: reason,
		})
	})
}

func (s *service) Cancel(ctx context.Context, actor types.Actor, orderID string) (*backend.Order, error) {
	return s.transition(ctx, actor, orderID, ActionCancel, func(ctx context.Context) (*backend.Order, error) {
		return s.remote.UpdateStatus(ctx, orderID, backend.StatusRequest{
			Status: enums.OrderStatusCancelledPendingAck,
		})
	})
}

func (s *service) AckRejection(ctx context.Context, actor types.Actor, orderID string) (*backend.Order, error) {
	return s.transition(ctx, actor, orderID, ActionAckRejection, func(ctx context.Context) (*backend.Order, error) {
		return s.remote.AckRejection(ctx, orderID)
	})
}

func (s *service) AckCancellation(ctx context.Context, actor types.Actor, orderID string) (*backend.Order, error) {
	return s.transition(ctx, actor, orderID, ActionAckCancellation, func(ctx context.Context) (*backend.Order, error) {
		return s.remote.AckCancellation(ctx, orderID)
	})
}

func (s *service) ConfirmDelivery(ctx context.Context, actor types.Actor, orderID string) (*backend.Order, error) {
	return s.transition(ctx, actor, orderID, ActionConfirmDelivery, func(ctx context.Context) (*backend.Order, error) {
		return s.remote.AckDelivery(ctx, orderID)
	})
}

// transition fetches the authoritative current state, evaluates the
// guard table, performs the remote call, and refreshes the mirror from
// the response. A per-order in-flight lock keeps a second concurrent
// transition of the same order out.
func (s *service) transition(ctx context.Context, actor types.Actor, orderID string, action Action, call func(ctx context.Context) (*backend.Order, error)) (*backend.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	acquired, err := s.locker.AcquireInFlight(ctx, orderID, s.inFlightTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire in-flight lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "another operation on this order is in flight")
	}
	defer func() {
		if err := s.locker.ReleaseInFlight(context.WithoutCancel(ctx), orderID); err != nil {
			s.log.Warn(s.log.WithOrderID(ctx, orderID), "failed to release in-flight lock")
		}
	}()

	current, err := s.remote.GetOrder(ctx, orderID)
	if err != nil {
		s.observe(action, "fetch_failed")
		return nil, err
	}
	if err := s.authorize(actor, current); err != nil {
		s.observe(action, "forbidden")
		return nil, err
	}

	outcome, err := planTransition(action, actor.Role, current.Status)
	if err != nil {
		s.observe(action, "invalid")
		return nil, err
	}
	if outcome.noop {
		s.observe(action, "noop")
		return current, nil
	}

	updated, err := call(ctx)
	if err != nil {
		s.observe(action, "error")
		return nil, err
	}
	s.observe(action, "ok")

	// The response may arrive after the caller is gone; the mirror is
	// still refreshed so history converges.
	mirrorCtx := context.WithoutCancel(ctx)
	if err := s.mirror.ApplyStatus(mirrorCtx, updated.ID, updated.Status.String(), updated.EtaMinutes, updated.RejectionReason); err != nil {
		s.log.Warn(s.log.WithOrderID(ctx, updated.ID), "failed to refresh order mirror")
	}

	return updated, nil
}

// authorize checks the actor owns their side of the order.
func (s *service) authorize(actor types.Actor, order *backend.Order) error {
	switch actor.Role {
	case enums.ActorRoleBuyer:
		if order.BuyerUserID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another buyer")
		}
	case enums.ActorRoleSeller:
		if !actor.ManagesVendor(order.VendorID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another vendor")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}
	return nil
}

func (s *service) observe(action Action, outcome string) {
	if s.metrics != nil {
		s.metrics.IncTransition(string(action), outcome)
	}
}

// Get prefers the authoritative backend record and falls back to the
// local mirror when the backend is unreachable.
func (s *service) Get(ctx context.Context, actor types.Actor, orderID string) (*backend.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	order, err := s.remote.GetOrder(ctx, orderID)
	if err != nil {
		if !pkgerrors.IsCode(err, pkgerrors.CodeNetwork) {
			return nil, err
		}
		mirror, mirrorErr := s.mirror.FindByID(ctx, orderID)
		if mirrorErr != nil {
			return nil, err
		}
		order = orderFromMirror(mirror)
	}

	if authErr := s.authorize(actor, order); authErr != nil {
		return nil, authErr
	}
	return order, nil
}

func (s *service) ListMine(ctx context.Context, actor types.Actor) ([]backend.Order, error) {
	if actor.Role != enums.ActorRoleBuyer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only buyers list their own orders")
	}

	orders, err := s.remote.ListMine(ctx, actor.UserID)
	if err == nil {
		return orders, nil
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeNetwork) {
		return nil, err
	}

	mirrors, mirrorErr := s.mirror.ListByBuyer(ctx, actor.UserID, 50)
	if mirrorErr != nil {
		return nil, err
	}
	return ordersFromMirrors(mirrors), nil
}

func (s *service) ListReceived(ctx context.Context, actor types.Actor) ([]backend.Order, error) {
	if actor.Role != enums.ActorRoleSeller || actor.VendorID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only sellers list received orders")
	}

	orders, err := s.remote.ListReceived(ctx, *actor.VendorID)
	if err == nil {
		return orders, nil
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeNetwork) {
		return nil, err
	}

	mirrors, mirrorErr := s.mirror.ListByVendor(ctx, *actor.VendorID, 50)
	if mirrorErr != nil {
		return nil, err
	}
	return ordersFromMirrors(mirrors), nil
}

func orderFromMirror(m *models.OrderMirror) *backend.Order {
	return &backend.Order{
		ID:               m.ID,
		VendorID:         m.VendorID,
		BuyerUserID:      m.BuyerUserID,
		BuyerPhone:       m.BuyerPhone,
		Lines:            m.Lines,
		DeliveryMode:     m.DeliveryMode,
		DeliveryAddress:  m.DeliveryAddress,
		SubtotalCents:    m.SubtotalCents,
		DeliveryFeeCents: m.DeliveryFeeCents,
		DiscountCents:    m.DiscountCents,
		TotalCents:       m.TotalCents,
		CouponCode:       m.CouponCode,
		Status:           m.Status,
		EtaMinutes:       m.EtaMinutes,
		RejectionReason:  m.RejectionReason,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func ordersFromMirrors(mirrors []models.OrderMirror) []backend.Order {
	out := make([]backend.Order, 0, len(mirrors))
	for i := range mirrors {
		out = append(out, *orderFromMirror(&mirrors[i]))
	}
	return out
}
