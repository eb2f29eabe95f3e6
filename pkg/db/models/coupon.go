package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mercadito-app/mercadito-backend/pkg/enums"
)

// Coupon is a persisted discount definition, applied against current cart
// totals on every quote rather than locked in at application time.
type Coupon struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string            `gorm:"column:code;uniqueIndex;not null"`
	BenefitType enums.BenefitType `gorm:"column:benefit_type;type:text;not null"`
	// Value is a percentage for percentage_off, an amount in cents for
	// amount_off, and ignored for free_delivery.
	Value  float64 `gorm:"column:value;not null;default:0"`
	Active bool    `gorm:"column:active;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
