package types

import "sort"

// DeliveryTier is one distance band of tiered delivery pricing. The band
// covers distances up to and including UptoKm; the last tier is treated as
// the unbounded upper band.
type DeliveryTier struct {
	UptoKm   float64 `json:"upto_km"`
	FeeCents int     `json:"fee_cents"`
}

// DeliveryTiers is stored as jsonb on the vendor record, sorted ascending by
// UptoKm.
type DeliveryTiers []DeliveryTier

// Sorted returns a copy ordered ascending by UptoKm. Persisted configs are
// expected to already be sorted; this guards against hand-edited rows.
func (t DeliveryTiers) Sorted() DeliveryTiers {
	out := make(DeliveryTiers, len(t))
	copy(out, t)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UptoKm < out[j].UptoKm
	})
	return out
}
