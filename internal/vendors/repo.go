package vendors

import (
	"context"
	"errors"

	"github.com/mercadito-app/mercadito-backend/pkg/db/models"
	pkgerrors "github.com/mercadito-app/mercadito-backend/pkg/errors"
	"gorm.io/gorm"
)

// Repository exposes read access to vendor profiles.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a vendor repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads a vendor profile.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Vendor, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}

	var vendor models.Vendor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load vendor")
	}
	return &vendor, nil
}

// Upsert stores a vendor profile, replacing the previous row.
func (r *Repository) Upsert(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error) {
	if vendor == nil || vendor.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	if !vendor.DeliveryModality.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery modality is invalid")
	}
	if err := r.db.WithContext(ctx).Save(vendor).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save vendor")
	}
	return vendor, nil
}
