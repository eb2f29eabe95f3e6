package types

import (
	"fmt"
	"strings"
)

// LineKeyKind discriminates the two ways a cart line can be identified.
type LineKeyKind string

const (
	// LineKeyCatalog identifies a line by a stable catalog id.
	LineKeyCatalog LineKeyKind = "catalog"
	// LineKeySynthetic identifies a line by category, catalog position and
	// name, for catalog contexts that lack a stable server-side id.
	LineKeySynthetic LineKeyKind = "synthetic"
)

// LineKey is the identity of a cart line. It is a tagged value object rather
// than a concatenated string so that the synthetic fallback stays explicit.
type LineKey struct {
	Kind      LineKeyKind `json:"kind"`
	CatalogID string      `json:"catalog_id,omitempty"`
	Category  string      `json:"category,omitempty"`
	Position  int         `json:"position,omitempty"`
	Name      string      `json:"name,omitempty"`
}

// CatalogKey builds a LineKey backed by a stable catalog id.
func CatalogKey(id string) LineKey {
	return LineKey{Kind: LineKeyCatalog, CatalogID: strings.TrimSpace(id)}
}

// SyntheticKey builds a LineKey from the category/position/name composite.
func SyntheticKey(category string, position int, name string) LineKey {
	return LineKey{
		Kind:     LineKeySynthetic,
		Category: strings.TrimSpace(category),
		Position: position,
		Name:     strings.TrimSpace(name),
	}
}

// Validate checks the key carries the fields its kind requires.
func (k LineKey) Validate() error {
	switch k.Kind {
	case LineKeyCatalog:
		if k.CatalogID == "" {
			return fmt.Errorf("catalog line key requires a catalog id")
		}
		return nil
	case LineKeySynthetic:
		if k.Name == "" {
			return fmt.Errorf("synthetic line key requires a name")
		}
		if k.Position < 0 {
			return fmt.Errorf("synthetic line key position cannot be negative")
		}
		return nil
	default:
		return fmt.Errorf("invalid line key kind %q", k.Kind)
	}
}

// String returns the canonical map-key form of the identity.
func (k LineKey) String() string {
	if k.Kind == LineKeyCatalog {
		return fmt.Sprintf("catalog:%s", k.CatalogID)
	}
	return fmt.Sprintf("synthetic:%s:%d:%s", k.Category, k.Position, k.Name)
}

// IsZero reports whether the key is unset.
func (k LineKey) IsZero() bool {
	return k.Kind == ""
}
