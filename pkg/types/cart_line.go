package types

// CartLine is one priced position inside a cart or a submitted order.
//
// UnitPriceCents is nil for "price on request" items, which are kept in the
// cart but excluded from the subtotal.
type CartLine struct {
	Key            LineKey `json:"key"`
	DisplayName    string  `json:"display_name"`
	UnitPriceCents *int    `json:"unit_price_cents"`
	Quantity       int     `json:"quantity"`
}

// LineTotalCents returns the priced contribution of the line, zero for
// price-on-request items.
func (l CartLine) LineTotalCents() int {
	if l.UnitPriceCents == nil {
		return 0
	}
	return *l.UnitPriceCents * l.Quantity
}

// CartLines is stored as jsonb on the order mirror.
type CartLines []CartLine

// SubtotalCents sums the priced lines.
func (ls CartLines) SubtotalCents() int {
	total := 0
	for _, l := range ls {
		total += l.LineTotalCents()
	}
	return total
}

// ItemCount sums quantities across all lines, priced or not.
func (ls CartLines) ItemCount() int {
	count := 0
	for _, l := range ls {
		count += l.Quantity
	}
	return count
}
