package types

import "testing"

func TestLineKeyValidate(t *testing.T) {
	t.Parallel()

	if err := CatalogKey("prod-77").Validate(); err != nil {
		t.Fatalf("catalog key should validate: %v", err)
	}
	if err := CatalogKey(" ").Validate(); err == nil {
		t.Fatal("blank catalog id must fail")
	}
	if err := SyntheticKey("drinks", 3, "Mote con huesillo").Validate(); err != nil {
		t.Fatalf("synthetic key should validate: %v", err)
	}
	if err := SyntheticKey("drinks", -1, "x").Validate(); err == nil {
		t.Fatal("negative position must fail")
	}
	if err := (LineKey{}).Validate(); err == nil {
		t.Fatal("zero key must fail")
	}
}

func TestLineKeyStringIsStable(t *testing.T) {
	t.Parallel()

	a := SyntheticKey("drinks", 3, "Mote con huesillo")
	b := SyntheticKey("drinks", 3, "Mote con huesillo")
	if a.String() != b.String() {
		t.Fatal("equal keys must render equal strings")
	}
	if a.String() == CatalogKey("drinks").String() {
		t.Fatal("catalog and synthetic keys must not collide")
	}
}

func TestCartLinesDerivedTotals(t *testing.T) {
	t.Parallel()

	price := 8990
	lines := CartLines{
		{Key: CatalogKey("a"), UnitPriceCents: &price, Quantity: 2},
		{Key: CatalogKey("b"), UnitPriceCents: nil, Quantity: 3}, // price on request
	}

	if got := lines.SubtotalCents(); got != 17980 {
		t.Fatalf("subtotal = %d, want 17980", got)
	}
	if got := lines.ItemCount(); got != 5 {
		t.Fatalf("item count = %d, want 5", got)
	}
}
