package checkout

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/mercadito-app/mercadito-backend/internal/cart"
	"github.com/mercadito-app/mercadito-backend/pkg/backend"
	"github.com/mercadito-app/mercadito-backend/pkg/db/models"
	"github.com/mercadito-app/mercadito-backend/pkg/enums"
	pkgerrors "github.com/mercadito-app/mercadito-backend/pkg/errors"
	"github.com/mercadito-app/mercadito-backend/pkg/logger"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }
func floatPtr(v float64) *float64 { return &v }

type stubCarts struct {
	snapshot *cart.Snapshot
	cleared  bool
	clearErr error
}

func (s *stubCarts) Get(ctx context.Context, actor types.Actor) (*cart.Snapshot, error) {
	return s.snapshot, nil
}

func (s *stubCarts) Clear(ctx context.Context, actor types.Actor) (*cart.Snapshot, error) {
	if s.clearErr != nil {
		return nil, s.clearErr
	}
	s.cleared = true
	return &cart.Snapshot{SessionID: actor.SessionID, Lines: types.CartLines{}}, nil
}

type stubVendors struct {
	vendor *models.Vendor
}

func (s *stubVendors) FindByID(ctx context.Context, id int64) (*models.Vendor, error) {
	if s.vendor == nil || s.vendor.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}
	return s.vendor, nil
}

type stubCoupons struct {
	coupon *models.Coupon
}

func (s *stubCoupons) FindActiveByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if s.coupon == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return s.coupon, nil
}

type stubGeo struct {
	km  *float64
	err error
}

func (s *stubGeo) DistanceKm(ctx context.Context, origin, destination string) (*float64, error) {
	return s.km, s.err
}

type stubCreator struct {
	lastKey  string
	lastReq  backend.CreateOrderRequest
	response *backend.Order
	err      error
	calls    int
}

func (s *stubCreator) CreateOrder(ctx context.Context, idempotencyKey string, req backend.CreateOrderRequest) (*backend.Order, error) {
	s.calls++
	s.lastKey = idempotencyKey
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

type stubMirror struct {
	appended []*models.OrderMirror
	err      error
}

func (s *stubMirror) Append(ctx context.Context, mirror *models.OrderMirror) (*models.OrderMirror, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.appended = append(s.appended, mirror)
	return mirror, nil
}

type stubLocker struct {
	held map[string]bool
}

func newStubLocker() *stubLocker { return &stubLocker{held: map[string]bool{}} }

func (s *stubLocker) AcquireInFlight(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if s.held[id] {
		return false, nil
	}
	s.held[id] = true
	return true, nil
}

func (s *stubLocker) ReleaseInFlight(ctx context.Context, id string) error {
	delete(s.held, id)
	return nil
}

func tieredVendor() *models.Vendor {
	return &models.Vendor{
		ID:               7,
		Name:             "Asadero El Buen Sabor",
		Address:          "Calle 10 #4-21",
		DeliveryModality: enums.DeliveryModalityTiered,
		DeliveryTiers: types.DeliveryTiers{
			{UptoKm: 3, FeeCents: 1000},
			{UptoKm: 999, FeeCents: 2000},
		},
	}
}

func filledCart() *cart.Snapshot {
	lines := types.CartLines{
		{Key: types.CatalogKey("prod-11"), DisplayName: "Pollo entero", UnitPriceCents: intPtr(8990), Quantity: 2},
	}
	return &cart.Snapshot{
		SessionID:     "sess-1",
		VendorID:      7,
		Lines:         lines,
		SubtotalCents: lines.SubtotalCents(),
		ItemCount:     lines.ItemCount(),
	}
}

func buyerActor() types.Actor {
	return types.Actor{SessionID: "sess-1", UserID: "buyer-1", Role: enums.ActorRoleBuyer}
}

type fixture struct {
	carts   *stubCarts
	vendors *stubVendors
	coupons *stubCoupons
	geo     *stubGeo
	creator *stubCreator
	mirror  *stubMirror
	locker  *stubLocker
	svc     Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		carts:   &stubCarts{snapshot: filledCart()},
		vendors: &stubVendors{vendor: tieredVendor()},
		coupons: &stubCoupons{},
		geo:     &stubGeo{km: floatPtr(5)},
		creator: &stubCreator{response: &backend.Order{ID: "ord_123", VendorID: 7, BuyerUserID: "buyer-1", Status: enums.OrderStatusPending}},
		mirror:  &stubMirror{},
		locker:  newStubLocker(),
	}

	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(f.carts, f.vendors, f.coupons, f.geo, f.creator, f.mirror, f.locker, time.Second, log, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func TestComputeTotalNeverNegative(t *testing.T) {
	if got := ComputeTotal(17980, 2000, 1798); got != 18182 {
		t.Fatalf("expected 18182, got %d", got)
	}
	if got := ComputeTotal(1000, 0, 5000); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := ComputeTotal(0, 0, 0); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestQuoteTieredDelivery(t *testing.T) {
	f := newFixture(t)

	quote, err := f.svc.Quote(context.Background(), buyerActor(), QuoteInput{
		DeliveryMode:    enums.DeliveryModeDelivery,
		DeliveryAddress: strPtr("Carrera 9 #45-12"),
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.SubtotalCents != 17980 {
		t.Fatalf("expected subtotal 17980, got %d", quote.SubtotalCents)
	}
	if quote.DeliveryFeeCents != 2000 {
		t.Fatalf("expected fee 2000, got %d", quote.DeliveryFeeCents)
	}
	if quote.TotalCents != 19980 {
		t.Fatalf("expected total 19980, got %d", quote.TotalCents)
	}
}

func TestQuoteWithPercentageCoupon(t *testing.T) {
	f := newFixture(t)
	f.coupons.coupon = &models.Coupon{Code: "DESCUENTO10", BenefitType: enums.BenefitTypePercentageOff, Value: 10, Active: true}

	quote, err := f.svc.Quote(context.Background(), buyerActor(), QuoteInput{
		DeliveryMode:    enums.DeliveryModeDelivery,
		DeliveryAddress: strPtr("Carrera 9 #45-12"),
		CouponCode:      strPtr("DESCUENTO10"),
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.DiscountCents != 1798 {
		t.Fatalf("expected discount 1798, got %d", quote.DiscountCents)
	}
	if quote.TotalCents != 18182 {
		t.Fatalf("expected total 18182, got %d", quote.TotalCents)
	}
}

func TestQuoteFreeAboveSubtotalZeroesFee(t *testing.T) {
	f := newFixture(t)
	f.vendors.vendor.FreeAboveSubtotalCents = intPtr(15000)

	quote, err := f.svc.Quote(context.Background(), buyerActor(), QuoteInput{
		DeliveryMode:    enums.DeliveryModeDelivery,
		DeliveryAddress: strPtr("Carrera 9 #45-12"),
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.DeliveryFeeCents != 0 {
		t.Fatalf("expected fee 0 above threshold, got %d", quote.DeliveryFeeCents)
	}
	if quote.TotalCents != 17980 {
		t.Fatalf("expected total 17980, got %d", quote.TotalCents)
	}
}

func TestQuotePickupSkipsDistanceAndFee(t *testing.T) {
	f := newFixture(t)
	f.geo.err = pkgerrors.New(pkgerrors.CodeDependency, "geo down")

	quote, err := f.svc.Quote(context.Background(), buyerActor(), QuoteInput{
		DeliveryMode: enums.DeliveryModePickup,
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.DeliveryFeeCents != 0 {
		t.Fatalf("expected fee 0 for pickup, got %d", quote.DeliveryFeeCents)
	}
}

func TestQuoteGeoOutageDegradesToLowestTier(t *testing.T) {
	f := newFixture(t)
	f.geo.err = pkgerrors.New(pkgerrors.CodeDependency, "geo down")

	quote, err := f.svc.Quote(context.Background(), buyerActor(), QuoteInput{
		DeliveryMode:    enums.DeliveryModeDelivery,
		DeliveryAddress: strPtr("Carrera 9 #45-12"),
	})
	if err != nil {
		t.Fatalf("quote should survive geo outage: %v", err)
	}
	if quote.DeliveryFeeCents != 1000 {
		t.Fatalf("expected lowest tier fee 1000, got %d", quote.DeliveryFeeCents)
	}
}

func TestSubmitHappyPathClearsCartAndMirrors(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Submit(context.Background(), buyerActor(), SubmitInput{
		QuoteInput: QuoteInput{
			DeliveryMode:    enums.DeliveryModeDelivery,
			DeliveryAddress: strPtr("Carrera 9 #45-12"),
		},
		BuyerPhone: strPtr("3001234567"),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if order.ID != "ord_123" {
		t.Fatalf("unexpected order %+v", order)
	}
	if !f.carts.cleared {
		t.Fatal("expected cart cleared after success")
	}
	if len(f.mirror.appended) != 1 {
		t.Fatalf("expected one mirror row, got %d", len(f.mirror.appended))
	}

	mirror := f.mirror.appended[0]
	if mirror.TotalCents != 19980 || mirror.SubtotalCents != 17980 || mirror.DeliveryFeeCents != 2000 {
		t.Fatalf("unexpected mirror totals %+v", mirror)
	}
	if mirror.IdempotencyKey == "" || mirror.IdempotencyKey != f.creator.lastKey {
		t.Fatalf("expected idempotency key recorded, got %q vs %q", mirror.IdempotencyKey, f.creator.lastKey)
	}
	if f.creator.lastReq.TotalCents != 19980 {
		t.Fatalf("unexpected request total %d", f.creator.lastReq.TotalCents)
	}
}

func TestSubmitEmptyCartFailsFast(t *testing.T) {
	f := newFixture(t)
	f.carts.snapshot = &cart.Snapshot{SessionID: "sess-1", Lines: types.CartLines{}}

	_, err := f.svc.Submit(context.Background(), buyerActor(), SubmitInput{
		QuoteInput: QuoteInput{DeliveryMode: enums.DeliveryModePickup},
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.creator.calls != 0 {
		t.Fatal("backend must not be contacted for an empty cart")
	}
}

func TestSubmitDeliveryWithoutAddressFailsFast(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), buyerActor(), SubmitInput{
		QuoteInput: QuoteInput{DeliveryMode: enums.DeliveryModeDelivery},
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.creator.calls != 0 {
		t.Fatal("backend must not be contacted without an address")
	}
	if f.carts.cleared {
		t.Fatal("cart must stay untouched")
	}
}

func TestSubmitBackendFailureLeavesCartUntouched(t *testing.T) {
	f := newFixture(t)
	f.creator.err = pkgerrors.New(pkgerrors.CodeNetwork, "backend unreachable")

	_, err := f.svc.Submit(context.Background(), buyerActor(), SubmitInput{
		QuoteInput: QuoteInput{
			DeliveryMode:    enums.DeliveryModeDelivery,
			DeliveryAddress: strPtr("Carrera 9 #45-12"),
		},
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if f.carts.cleared {
		t.Fatal("cart must stay untouched on failure")
	}
	if len(f.mirror.appended) != 0 {
		t.Fatal("no mirror row on failure")
	}
}

func TestSubmitFreshIdempotencyKeyPerAttempt(t *testing.T) {
	f := newFixture(t)
	f.creator.err = pkgerrors.New(pkgerrors.CodeNetwork, "backend unreachable")

	input := SubmitInput{QuoteInput: QuoteInput{
		DeliveryMode:    enums.DeliveryModeDelivery,
		DeliveryAddress: strPtr("Carrera 9 #45-12"),
	}}

	_, _ = f.svc.Submit(context.Background(), buyerActor(), input)
	firstKey := f.creator.lastKey

	f.creator.err = nil
	if _, err := f.svc.Submit(context.Background(), buyerActor(), input); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if f.creator.lastKey == "" || f.creator.lastKey == firstKey {
		t.Fatalf("expected a fresh token per attempt, got %q twice", firstKey)
	}
}

func TestSubmitSecondInFlightSubmissionRejected(t *testing.T) {
	f := newFixture(t)
	f.locker.held["submit:sess-1"] = true

	_, err := f.svc.Submit(context.Background(), buyerActor(), SubmitInput{
		QuoteInput: QuoteInput{DeliveryMode: enums.DeliveryModePickup},
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if f.creator.calls != 0 {
		t.Fatal("backend must not be contacted while another submission is in flight")
	}
}

func TestSubmitMirrorFailureDoesNotFailSubmission(t *testing.T) {
	f := newFixture(t)
	f.mirror.err = pkgerrors.New(pkgerrors.CodeInternal, "disk full")

	order, err := f.svc.Submit(context.Background(), buyerActor(), SubmitInput{
		QuoteInput: QuoteInput{
			DeliveryMode:    enums.DeliveryModeDelivery,
			DeliveryAddress: strPtr("Carrera 9 #45-12"),
		},
	})
	if err != nil {
		t.Fatalf("submit should succeed despite mirror failure: %v", err)
	}
	if order == nil || order.ID != "ord_123" {
		t.Fatalf("unexpected order %+v", order)
	}
	if !f.carts.cleared {
		t.Fatal("cart should still be cleared")
	}
}

func TestSubmitUnknownCouponSurfaces(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), buyerActor(), SubmitInput{
		QuoteInput: QuoteInput{
			DeliveryMode:    enums.DeliveryModeDelivery,
			DeliveryAddress: strPtr("Carrera 9 #45-12"),
			CouponCode:      strPtr("NOEXISTE"),
		},
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if f.creator.calls != 0 {
		t.Fatal("backend must not be contacted with an unknown coupon")
	}
}
