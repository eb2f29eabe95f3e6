package models

import (
	"time"

	"github.com/mercadito-app/mercadito-backend/pkg/enums"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

// OrderMirror is the best-effort local copy of an order accepted by the
// remote backend. It exists for offline display and history; the backend
// remains the source of truth for status.
type OrderMirror struct {
	// ID is the backend-assigned order id, opaque to this service.
	ID          string `gorm:"column:id;primaryKey"`
	VendorID    int64  `gorm:"column:vendor_id;not null"`
	BuyerUserID string `gorm:"column:buyer_user_id;not null"`
	SessionID   string `gorm:"column:session_id;not null"`

	Lines           types.CartLines    `gorm:"column:lines;type:jsonb;serializer:json"`
	DeliveryMode    enums.DeliveryMode `gorm:"column:delivery_mode;type:text;not null"`
	DeliveryAddress *string            `gorm:"column:delivery_address"`
	BuyerPhone      *string            `gorm:"column:buyer_phone"`

	SubtotalCents    int     `gorm:"column:subtotal_cents;not null"`
	DeliveryFeeCents int     `gorm:"column:delivery_fee_cents;not null"`
	DiscountCents    int     `gorm:"column:discount_cents;not null;default:0"`
	TotalCents       int     `gorm:"column:total_cents;not null"`
	CouponCode       *string `gorm:"column:coupon_code"`

	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	EtaMinutes      *int              `gorm:"column:eta_minutes"`
	RejectionReason *string           `gorm:"column:rejection_reason"`

	// IdempotencyKey is the client-generated token sent with the create
	// call, kept for duplicate diagnosis.
	IdempotencyKey string `gorm:"column:idempotency_key;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
