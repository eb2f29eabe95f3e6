package pricing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mercadito-app/mercadito-backend/pkg/db/models"
	"github.com/mercadito-app/mercadito-backend/pkg/enums"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

// DeliveryConfig is the delivery pricing profile of a vendor, already
// loaded and detached from storage. The calculator is pure over it.
type DeliveryConfig struct {
	Modality               enums.DeliveryModality
	Tiers                  types.DeliveryTiers
	FlatFeeCents           *int
	FreeAboveSubtotalCents *int
	// LegacyFeeText is consulted only when no structured config exists.
	LegacyFeeText *string
}

// ConfigFromVendor maps a stored vendor row into a calculator config.
func ConfigFromVendor(v *models.Vendor) DeliveryConfig {
	if v == nil {
		return DeliveryConfig{Modality: enums.DeliveryModalityUnspecified}
	}
	return DeliveryConfig{
		Modality:               v.DeliveryModality,
		Tiers:                  v.DeliveryTiers,
		FlatFeeCents:           v.FlatFeeCents,
		FreeAboveSubtotalCents: v.FreeAboveSubtotalCents,
		LegacyFeeText:          v.LegacyFeeText,
	}
}

// Quote is one delivery fee computation request.
type Quote struct {
	Mode          enums.DeliveryMode
	Config        DeliveryConfig
	DistanceKm    *float64
	SubtotalCents int
}

// DeliveryFeeCents computes the delivery fee for a quote. The result is
// never negative and pickup never pays delivery.
func DeliveryFeeCents(q Quote) int {
	if q.Mode == enums.DeliveryModePickup {
		return 0
	}

	fee := baseFee(q.Config, q.DistanceKm)

	if q.Config.FreeAboveSubtotalCents != nil && q.SubtotalCents >= *q.Config.FreeAboveSubtotalCents {
		fee = 0
	}
	if fee < 0 {
		return 0
	}
	return fee
}

func baseFee(cfg DeliveryConfig, distanceKm *float64) int {
	switch cfg.Modality {
	case enums.DeliveryModalityFree:
		return 0
	case enums.DeliveryModalityFlat:
		if cfg.FlatFeeCents != nil {
			return *cfg.FlatFeeCents
		}
		return 0
	case enums.DeliveryModalityTiered:
		return tieredFee(cfg.Tiers, distanceKm)
	default:
		return legacyFee(cfg.LegacyFeeText)
	}
}

// tieredFee picks the first band covering the distance, or the last
// band when the distance exceeds every bound. An unresolved distance
// charges the lowest band rather than failing the quote. Vendors with
// an empty tier list charge nothing; the config is treated as
// incomplete rather than the order as unpriceable.
func tieredFee(tiers types.DeliveryTiers, distanceKm *float64) int {
	if len(tiers) == 0 {
		return 0
	}
	sorted := tiers.Sorted()
	if distanceKm == nil {
		return sorted[0].FeeCents
	}
	for _, tier := range sorted {
		if tier.UptoKm >= *distanceKm {
			return tier.FeeCents
		}
	}
	return sorted[len(sorted)-1].FeeCents
}

var legacyFeePattern = regexp.MustCompile(`\d+`)

// legacyFee parses free-form fee text some vendors still carry. Text
// without digits ("Consultar", "A convenir") charges nothing.
func legacyFee(text *string) int {
	if text == nil {
		return 0
	}
	trimmed := strings.TrimSpace(*text)
	if trimmed == "" {
		return 0
	}
	match := legacyFeePattern.FindString(strings.ReplaceAll(strings.ReplaceAll(trimmed, ".", ""), ",", ""))
	if match == "" {
		return 0
	}
	fee, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return fee
}
