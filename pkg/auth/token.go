package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	pkgerrors "github.com/mercadito-app/mercadito-backend/pkg/errors"
)

const issuer = "mercadito-backend"

// MintAccessToken signs an HS256 access token for the given payload.
func MintAccessToken(secret []byte, payload AccessTokenPayload, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "jwt secret is empty")
	}
	if payload.UserID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !payload.Role.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "actor role is invalid")
	}

	now := time.Now().UTC()
	claims := AccessTokenClaims{
		UserID:   payload.UserID,
		Role:     payload.Role,
		VendorID: payload.VendorID,
		Phone:    payload.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   payload.UserID,
			ID:        payload.JTI,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to sign access token")
	}
	return signed, nil
}

// ParseAccessToken verifies the signature and expiry of a token and
// returns its typed claims.
func ParseAccessToken(secret []byte, raw string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unexpected signing method")
		}
		return secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}
	if !token.Valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}
	if !claims.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token carries an unknown role")
	}
	return claims, nil
}
