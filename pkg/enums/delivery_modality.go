package enums

import "fmt"

// DeliveryModality selects how a vendor's delivery fee is computed.
type DeliveryModality string

const (
	DeliveryModalityFree        DeliveryModality = "free"
	DeliveryModalityTiered      DeliveryModality = "tiered_by_distance"
	DeliveryModalityFlat        DeliveryModality = "flat"
	DeliveryModalityUnspecified DeliveryModality = "unspecified"
)

var validDeliveryModalities = []DeliveryModality{
	DeliveryModalityFree,
	DeliveryModalityTiered,
	DeliveryModalityFlat,
	DeliveryModalityUnspecified,
}

// String implements fmt.Stringer.
func (d DeliveryModality) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryModality.
func (d DeliveryModality) IsValid() bool {
	for _, candidate := range validDeliveryModalities {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryModality converts raw input into a DeliveryModality.
func ParseDeliveryModality(value string) (DeliveryModality, error) {
	for _, candidate := range validDeliveryModalities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery modality %q", value)
}
