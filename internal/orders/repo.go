package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/mercadito-app/mercadito-backend/pkg/db/models"
	pkgerrors "github.com/mercadito-app/mercadito-backend/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists the best-effort local mirror of backend-owned
// orders.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order mirror repository bound to the
// provided DB.
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

// Append stores a freshly accepted order. Replays of the same backend
// id overwrite the previous row instead of erroring, since the create
// call itself is idempotent upstream.
func (r *Repository) Append(ctx context.Context, mirror *models.OrderMirror) (*models.OrderMirror, error) {
	if mirror == nil || strings.TrimSpace(mirror.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(mirror).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append order mirror")
	}
	return mirror, nil
}

// ApplyStatus refreshes the mutable lifecycle fields from a backend
// response. Missing rows are not an error; the mirror is best effort.
func (r *Repository) ApplyStatus(ctx context.Context, id string, status string, etaMinutes *int, rejectionReason *string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	updates := map[string]any{
		"status":           status,
		"eta_minutes":      etaMinutes,
		"rejection_reason": rejectionReason,
	}
	err := r.db.WithContext(ctx).
		Model(&models.OrderMirror{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply order status")
	}
	return nil
}

// FindByID loads one mirrored order.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.OrderMirror, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	var mirror models.OrderMirror
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&mirror).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order mirror")
	}
	return &mirror, nil
}

// ListByBuyer returns the buyer's mirrored orders, newest first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerUserID string, limit int) ([]models.OrderMirror, error) {
	if strings.TrimSpace(buyerUserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer user id is required")
	}
	return r.list(ctx, "buyer_user_id = ?", buyerUserID, limit)
}

// ListByVendor returns a vendor's mirrored orders, newest first.
func (r *Repository) ListByVendor(ctx context.Context, vendorID int64, limit int) ([]models.OrderMirror, error) {
	if vendorID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	return r.list(ctx, "vendor_id = ?", vendorID, limit)
}

func (r *Repository) list(ctx context.Context, where string, arg any, limit int) ([]models.OrderMirror, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var mirrors []models.OrderMirror
	err := r.db.WithContext(ctx).
		Where(where, arg).
		Order("created_at DESC").
		Limit(limit).
		Find(&mirrors).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list order mirrors")
	}
	return mirrors, nil
}
