package models

import (
	"time"

	"github.com/mercadito-app/mercadito-backend/pkg/enums"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

// Vendor holds the catalog-side vendor profile this service needs to price a
// cart: the address distance is measured against and the delivery fee
// configuration.
type Vendor struct {
	ID      int64  `gorm:"column:id;primaryKey"`
	Name    string `gorm:"column:name;not null"`
	Address string `gorm:"column:address;not null"`
	// OwnerUserID links the vendor to the seller account that manages it.
	// A signed-in seller must not order from their own vendor.
	OwnerUserID *string `gorm:"column:owner_user_id"`

	DeliveryModality       enums.DeliveryModality `gorm:"column:delivery_modality;type:text;not null;default:'unspecified'"`
	DeliveryTiers          types.DeliveryTiers    `gorm:"column:delivery_tiers;type:jsonb;serializer:json"`
	FlatFeeCents           *int                   `gorm:"column:flat_fee_cents"`
	FreeAboveSubtotalCents *int                   `gorm:"column:free_above_subtotal_cents"`
	// LegacyFeeText is the free-form fee some vendors still carry instead
	// of a structured config ("2000", "Consultar", ...).
	LegacyFeeText *string `gorm:"column:legacy_fee_text"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
