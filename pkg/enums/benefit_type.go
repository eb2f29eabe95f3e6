package enums

import "fmt"

// BenefitType is the kind of reduction a coupon grants.
type BenefitType string

const (
	BenefitTypePercentageOff BenefitType = "percentage_off"
	BenefitTypeAmountOff     BenefitType = "amount_off"
	BenefitTypeFreeDelivery  BenefitType = "free_delivery"
)

var validBenefitTypes = []BenefitType{
	BenefitTypePercentageOff,
	BenefitTypeAmountOff,
	BenefitTypeFreeDelivery,
}

// String implements fmt.Stringer.
func (b BenefitType) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BenefitType.
func (b BenefitType) IsValid() bool {
	for _, candidate := range validBenefitTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBenefitType converts raw input into a BenefitType.
func ParseBenefitType(value string) (BenefitType, error) {
	for _, candidate := range validBenefitTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid benefit type %q", value)
}
