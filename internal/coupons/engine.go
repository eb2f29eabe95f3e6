package coupons

import (
	"github.com/mercadito-app/mercadito-backend/pkg/db/models"
	"github.com/mercadito-app/mercadito-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// DiscountCents computes the reduction a coupon grants against the
// current totals. The discount never exceeds its base: subtotal for
// percentage and amount coupons, delivery fee for free-delivery ones.
// Coupons are reapplied on every quote; nothing is locked in when the
// code is first entered.
func DiscountCents(coupon *models.Coupon, subtotalCents, deliveryFeeCents int) int {
	if coupon == nil || !coupon.Active {
		return 0
	}
	if subtotalCents < 0 {
		subtotalCents = 0
	}
	if deliveryFeeCents < 0 {
		deliveryFeeCents = 0
	}

	switch coupon.BenefitType {
	case enums.BenefitTypePercentageOff:
		return percentageOff(coupon.Value, subtotalCents)
	case enums.BenefitTypeAmountOff:
		amount := int(coupon.Value)
		if amount < 0 {
			return 0
		}
		if amount > subtotalCents {
			return subtotalCents
		}
		return amount
	case enums.BenefitTypeFreeDelivery:
		return deliveryFeeCents
	default:
		// Unknown benefit types grant nothing instead of failing the quote.
		return 0
	}
}

// percentageOff rounds half away from zero, so 10% of 17985 is 1799.
func percentageOff(percent float64, subtotalCents int) int {
	if percent <= 0 {
		return 0
	}
	discount := decimal.NewFromInt(int64(subtotalCents)).
		Mul(decimal.NewFromFloat(percent)).
		Div(decimal.NewFromInt(100)).
		Round(0)
	result := int(discount.IntPart())
	if result > subtotalCents {
		return subtotalCents
	}
	if result < 0 {
		return 0
	}
	return result
}
