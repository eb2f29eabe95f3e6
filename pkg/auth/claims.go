package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/mercadito-app/mercadito-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID string
	Role   enums.ActorRole
	// VendorID is set for sellers and names the vendor they manage.
	VendorID *int64
	Phone    *string
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   string          `json:"user_id"`
	Role     enums.ActorRole `json:"role"`
	VendorID *int64          `json:"vendor_id,omitempty"`
	Phone    *string         `json:"phone,omitempty"`
	jwt.RegisteredClaims
}
