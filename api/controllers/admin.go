package controllers

import (
	"net/http"

	"github.com/mercadito-app/mercadito-backend/api/responses"
	"github.com/mercadito-app/mercadito-backend/api/validators"
	"github.com/mercadito-app/mercadito-backend/internal/coupons"
	"github.com/mercadito-app/mercadito-backend/internal/vendors"
	"github.com/mercadito-app/mercadito-backend/pkg/db/models"
	"github.com/mercadito-app/mercadito-backend/pkg/enums"
	"github.com/mercadito-app/mercadito-backend/pkg/logger"
	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

type deliveryTierBody struct {
	UptoKm   float64 `json:"upto_km" validate:"required,gt=0"`
	FeeCents int     `json:"fee_cents" validate:"gte=0"`
}

type upsertVendorRequest struct {
	ID                     int64              `json:"id" validate:"required,gt=0"`
	Name                   string             `json:"name" validate:"required,max=200"`
	Address                string             `json:"address" validate:"required,max=300"`
	OwnerUserID            *string            `json:"owner_user_id,omitempty"`
	DeliveryModality       string             `json:"delivery_modality" validate:"required"`
	DeliveryTiers          []deliveryTierBody `json:"delivery_tiers,omitempty" validate:"omitempty,dive"`
	FlatFeeCents           *int               `json:"flat_fee_cents,omitempty" validate:"omitempty,gte=0"`
	FreeAboveSubtotalCents *int               `json:"free_above_subtotal_cents,omitempty" validate:"omitempty,gte=0"`
	LegacyFeeText          *string            `json:"legacy_fee_text,omitempty" validate:"omitempty,max=120"`
}

type createCouponRequest struct {
	Code        string  `json:"code" validate:"required,min=2,max=40"`
	BenefitType string  `json:"benefit_type" validate:"required,oneof=percentage_off amount_off free_delivery"`
	Value       float64 `json:"value" validate:"gte=0"`
	Active      bool    `json:"active"`
}

// AdminUpsertVendor writes the vendor pricing profile used by quoting.
// It is only routed outside prod.
func AdminUpsertVendor(repo *vendors.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body upsertVendorRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tiers := make(types.DeliveryTiers, 0, len(body.DeliveryTiers))
		for _, t := range body.DeliveryTiers {
			tiers = append(tiers, types.DeliveryTier{UptoKm: t.UptoKm, FeeCents: t.FeeCents})
		}

		vendor, err := repo.Upsert(r.Context(), &models.Vendor{
			ID:                     body.ID,
			Name:                   validators.SanitizeString(body.Name, 200),
			Address:                validators.SanitizeString(body.Address, 300),
			OwnerUserID:            body.OwnerUserID,
			DeliveryModality:       enums.DeliveryModality(body.DeliveryModality),
			DeliveryTiers:          tiers.Sorted(),
			FlatFeeCents:           body.FlatFeeCents,
			FreeAboveSubtotalCents: body.FreeAboveSubtotalCents,
			LegacyFeeText:          body.LegacyFeeText,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vendor)
	}
}

// AdminCreateCoupon registers a discount definition. It is only routed
// outside prod.
func AdminCreateCoupon(repo *coupons.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createCouponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := repo.Create(r.Context(), &models.Coupon{
			Code:        body.Code,
			BenefitType: enums.BenefitType(body.BenefitType),
			Value:       body.Value,
			Active:      body.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}
