package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mercadito-app/mercadito-backend/internal/cart"
	"github.com/mercadito-app/mercadito-backend/internal/coupons"
	"github.com/mercadito-app/mercadito-backend/internal/pricing"
	"github.com/mercadito-app/mercadito-backend/pkg/backend"
	"github.com/mercadito-app/mercadito-backend/pkg/db/models"
	"github.com/mercadito-app/mercadito-backend/pkg/enums"
	pkgerrors "github.com/mercadito-app/mercadito-backend/pkg/errors"
	"github.com/mercadito-app/mercadito-backend/pkg/logger"
	"github.com/mercadito-app/mercadito-backend/pkg/metrics"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

type cartSource interface {
	Get(ctx context.Context, actor types.Actor) (*cart.Snapshot, error)
	Clear(ctx context.Context, actor types.Actor) (*cart.Snapshot, error)
}

type vendorLoader interface {
	FindByID(ctx context.Context, id int64) (*models.Vendor, error)
}

type couponLoader interface {
	FindActiveByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type orderCreator interface {
	CreateOrder(ctx context.Context, idempotencyKey string, req backend.CreateOrderRequest) (*backend.Order, error)
}

type mirrorAppender interface {
	Append(ctx context.Context, mirror *models.OrderMirror) (*models.OrderMirror, error)
}

type inFlightLocker interface {
	AcquireInFlight(ctx context.Context, id string, ttl time.Duration) (bool, error)
	ReleaseInFlight(ctx context.Context, id string) error
}

// QuoteInput selects the delivery handoff and optional coupon for
// pricing the current cart.
type QuoteInput struct {
	DeliveryMode    enums.DeliveryMode
	DeliveryAddress *string
	CouponCode      *string
}

// Quote is a fully priced view of the current cart.
type Quote struct {
	VendorID         int64
	Lines            types.CartLines
	SubtotalCents    int
	DeliveryFeeCents int
	DiscountCents    int
	TotalCents       int
	DistanceKm       *float64
	CouponCode       *string
}

// SubmitInput carries everything needed to open the order remotely.
type SubmitInput struct {
	QuoteInput
	BuyerPhone *string
}

// Service assembles priced orders out of the session cart and submits
// them to the remote backend.
type Service interface {
	Quote(ctx context.Context, actor types.Actor, input QuoteInput) (*Quote, error)
	Submit(ctx context.Context, actor types.Actor, input SubmitInput) (*backend.Order, error)
}

type service struct {
	carts       cartSource
	vendors     vendorLoader
	coupons     couponLoader
	distance    geoResolver
	creator     orderCreator
	mirror      mirrorAppender
	locker      inFlightLocker
	inFlightTTL time.Duration
	log         *logger.Logger
	metrics     *metrics.OrderMetrics
}

type geoResolver interface {
	DistanceKm(ctx context.Context, origin, destination string) (*float64, error)
}

// NewService builds the checkout service.
func NewService(
	carts cartSource,
	vendors vendorLoader,
	couponRepo couponLoader,
	distance geoResolver,
	creator orderCreator,
	mirror mirrorAppender,
	locker inFlightLocker,
	inFlightTTL time.Duration,
	log *logger.Logger,
	m *metrics.OrderMetrics,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart source required")
	}
	if vendors == nil {
		return nil, fmt.Errorf("vendor loader required")
	}
	if couponRepo == nil {
		return nil, fmt.Errorf("coupon loader required")
	}
	if distance == nil {
		return nil, fmt.Errorf("distance resolver required")
	}
	if creator == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if mirror == nil {
		return nil, fmt.Errorf("mirror appender required")
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
		carts:       carts,
		vendors:     vendors,
		coupons:     couponRepo,
		distance:    distance,
		creator:     creator,
		mirror:      mirror,
		locker:      locker,
		inFlightTTL: inFlightTTL,
		log:         log,
		metrics:     m,
	}, nil
}

// ComputeTotal never goes negative, even when combined rounding makes
// the discount overshoot.
func ComputeTotal(subtotalCents, deliveryFeeCents, discountCents int) int {
	total := subtotalCents + deliveryFeeCents - discountCents
	if total < 0 {
		return 0
	}
	return total
}

// Quote prices the current cart without submitting anything.
func (s *service) Quote(ctx context.Context, actor types.Actor, input QuoteInput) (*Quote, error) {
	snapshot, err := s.carts.Get(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.buildQuote(ctx, snapshot, input)
}

// Submit validates, prices, and submits the cart as a new order. On
// success the cart is cleared and a local mirror row appended; on any
// failure the cart is left untouched so the user can retry.
func (s *service) Submit(ctx context.Context, actor types.Actor, input SubmitInput) (*backend.Order, error) {
	started := time.Now()

	order, err := s.submit(ctx, actor, input)
	if s.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				outcome = "invalid"
			}
		}
		s.metrics.ObserveSubmit(outcome, time.Since(started))
	}
	return order, err
}

func (s *service) submit(ctx context.Context, actor types.Actor, input SubmitInput) (*backend.Order, error) {
	snapshot, err := s.carts.Get(ctx, actor)
	if err != nil {
		return nil, err
	}
	if snapshot.ItemCount == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if err := validateDelivery(input.QuoteInput); err != nil {
		return nil, err
	}

	// One submission per session at a time.
	lockID := "submit:" + actor.SessionID
	acquired, err := s.locker.AcquireInFlight(ctx, lockID, s.inFlightTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire submit lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a submission for this session is already in flight")
	}
	defer func() {
		if err := s.locker.ReleaseInFlight(context.WithoutCancel(ctx), lockID); err != nil {
			s.log.Warn(s.log.WithSessionID(ctx, actor.SessionID), "failed to release submit lock")
		}
	}()

	quote, err := s.buildQuote(ctx, snapshot, input.QuoteInput)
	if err != nil {
		return nil, err
	}

	// A fresh token per attempt; the backend dedupes retries of the
	// same attempt, while a deliberate resubmit gets a new token.
	idempotencyKey := uuid.NewString()

	order, err := s.creator.CreateOrder(ctx, idempotencyKey, backend.CreateOrderRequest{
		VendorID:         quote.VendorID,
		BuyerUserID:      actor.UserID,
		BuyerPhone:       input.BuyerPhone,
		Lines:            quote.Lines,
		DeliveryMode:     input.DeliveryMode,
		DeliveryAddress:  input.DeliveryAddress,
		SubtotalCents:    quote.SubtotalCents,
		DeliveryFeeCents: quote.DeliveryFeeCents,
		DiscountCents:    quote.DiscountCents,
		TotalCents:       quote.TotalCents,
		CouponCode:       quote.CouponCode,
	})
	if err != nil {
		return nil, err
	}

	// The backend accepted: the order exists regardless of what happens
	// below, so local bookkeeping failures are logged, never surfaced.
	finishCtx := context.WithoutCancel(ctx)

	if _, err := s.carts.Clear(finishCtx, actor); err != nil {
		s.log.Warn(s.log.WithOrderID(ctx, order.ID), "failed to clear cart after submission")
	}

	if _, err := s.mirror.Append(finishCtx, &models.OrderMirror{
		ID:               order.ID,
		VendorID:         order.VendorID,
		BuyerUserID:      actor.UserID,
		SessionID:        actor.SessionID,
		Lines:            quote.Lines,
		DeliveryMode:     input.DeliveryMode,
		DeliveryAddress:  input.DeliveryAddress,
		BuyerPhone:       input.BuyerPhone,
		SubtotalCents:    quote.SubtotalCents,
		DeliveryFeeCents: quote.DeliveryFeeCents,
		DiscountCents:    quote.DiscountCents,
		TotalCents:       quote.TotalCents,
		CouponCode:       quote.CouponCode,
		Status:           order.Status,
		EtaMinutes:       order.EtaMinutes,
		IdempotencyKey:   idempotencyKey,
	}); err != nil {
		s.log.Warn(s.log.WithOrderID(ctx, order.ID), "failed to append order mirror")
	}

	return order, nil
}

func (s *service) buildQuote(ctx context.Context, snapshot *cart.Snapshot, input QuoteInput) (*Quote, error) {
	if !input.DeliveryMode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery mode is invalid")
	}
	if snapshot.VendorID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	vendor, err := s.vendors.FindByID(ctx, snapshot.VendorID)
	if err != nil {
		return nil, err
	}

	var distanceKm *float64
	if input.DeliveryMode == enums.DeliveryModeDelivery && input.DeliveryAddress != nil {
		distanceKm, err = s.distance.DistanceKm(ctx, vendor.Address, *input.DeliveryAddress)
		if err != nil {
			// Pricing degrades to the lowest tier instead of blocking
			// the order on a geo outage.
			s.log.Warn(s.log.WithField(ctx, "vendor_id", vendor.ID), "distance resolution failed")
			distanceKm = nil
		}
	}

	fee := pricing.DeliveryFeeCents(pricing.Quote{
		Mode:          input.DeliveryMode,
		Config:        pricing.ConfigFromVendor(vendor),
		DistanceKm:    distanceKm,
		SubtotalCents: snapshot.SubtotalCents,
	})

	discount := 0
	var appliedCode *string
	if input.CouponCode != nil && strings.TrimSpace(*input.CouponCode) != "" {
		coupon, err := s.coupons.FindActiveByCode(ctx, *input.CouponCode)
		if err != nil {
			return nil, err
		}
		discount = coupons.DiscountCents(coupon, snapshot.SubtotalCents, fee)
		appliedCode = &coupon.Code
	}

	return &Quote{
		VendorID:         snapshot.VendorID,
		Lines:            snapshot.Lines,
		SubtotalCents:    snapshot.SubtotalCents,
		DeliveryFeeCents: fee,
		DiscountCents:    discount,
		TotalCents:       ComputeTotal(snapshot.SubtotalCents, fee, discount),
		DistanceKm:       distanceKm,
		CouponCode:       appliedCode,
	}, nil
}

func validateDelivery(input QuoteInput) error {
	if !input.DeliveryMode.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery mode is invalid")
	}
	if input.DeliveryMode == enums.DeliveryModeDelivery {
		if input.DeliveryAddress == nil || strings.TrimSpace(*input.DeliveryAddress) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required").
				WithDetails(map[string]string{"field": "delivery_address"})
		}
	}
	return nil
}
