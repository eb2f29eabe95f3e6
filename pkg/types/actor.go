package types

import "github.com/mercadito-app/mercadito-backend/pkg/enums"

// Actor is the authenticated caller attached to a request after token
// verification.
type Actor struct {
	SessionID string
	UserID    string
	Role      enums.ActorRole
	// VendorID names the vendor the actor manages when Role is seller.
	VendorID *int64
	Phone    *string
}

// ManagesVendor reports whether the actor is the seller side of the
// given vendor.
func (a Actor) ManagesVendor(vendorID int64) bool {
	return a.Role == enums.ActorRoleSeller && a.VendorID != nil && *a.VendorID == vendorID
}
