package coupons

import (
	"testing"

	"github.com/mercadito-app/mercadito-backend/pkg/db/models"
	"github.com/mercadito-app/mercadito-backend/pkg/enums"
)

func activeCoupon(benefit enums.BenefitType, value float64) *models.Coupon {
	return &models.Coupon{Code: "TEST", BenefitType: benefit, Value: value, Active: true}
}

func TestDiscountPercentageOff(t *testing.T) {
	coupon := activeCoupon(enums.BenefitTypePercentageOff, 10)

	if got := DiscountCents(coupon, 17980, 2000); got != 1798 {
		t.Fatalf("expected 1798, got %d", got)
	}

	// Half cents round away from zero.
	if got := DiscountCents(coupon, 17985, 0); got != 1799 {
		t.Fatalf("expected 1799, got %d", got)
	}

	// Never more than the subtotal even at silly percentages.
	coupon.Value = 250
	if got := DiscountCents(coupon, 10000, 0); got != 10000 {
		t.Fatalf("expected clamp to subtotal, got %d", got)
	}
}

func TestDiscountAmountOff(t *testing.T) {
	coupon := activeCoupon(enums.BenefitTypeAmountOff, 5000)

	if got := DiscountCents(coupon, 17980, 0); got != 5000 {
		t.Fatalf("expected 5000, got %d", got)
	}
	if got := DiscountCents(coupon, 3000, 0); got != 3000 {
		t.Fatalf("expected clamp to subtotal, got %d", got)
	}
}

func TestDiscountFreeDelivery(t *testing.T) {
	coupon := activeCoupon(enums.BenefitTypeFreeDelivery, 0)

	if got := DiscountCents(coupon, 17980, 2000); got != 2000 {
		t.Fatalf("expected delivery fee back, got %d", got)
	}
	if got := DiscountCents(coupon, 17980, 0); got != 0 {
		t.Fatalf("expected 0 without delivery fee, got %d", got)
	}
}

func TestDiscountUnknownBenefitGrantsNothing(t *testing.T) {
	coupon := &models.Coupon{Code: "TEST", BenefitType: enums.BenefitType("loyalty_points"), Value: 10, Active: true}
	if got := DiscountCents(coupon, 17980, 2000); got != 0 {
		t.Fatalf("expected 0 for unknown benefit, got %d", got)
	}
}

func TestDiscountInactiveOrMissingCoupon(t *testing.T) {
	if got := DiscountCents(nil, 17980, 2000); got != 0 {
		t.Fatalf("expected 0 without coupon, got %d", got)
	}

	coupon := activeCoupon(enums.BenefitTypePercentageOff, 10)
	coupon.Active = false
	if got := DiscountCents(coupon, 17980, 2000); got != 0 {
		t.Fatalf("expected 0 for inactive coupon, got %d", got)
	}
}

func TestDiscountNeverNegative(t *testing.T) {
	coupon := activeCoupon(enums.BenefitTypeAmountOff, -500)
	if got := DiscountCents(coupon, 17980, 0); got != 0 {
		t.Fatalf("expected 0 for negative value, got %d", got)
	}

	coupon = activeCoupon(enums.BenefitTypePercentageOff, -10)
	if got := DiscountCents(coupon, 17980, 0); got != 0 {
		t.Fatalf("expected 0 for negative percent, got %d", got)
	}
}
