package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/models"
	"github.com/huyphamdev/laundry-pos/utils"
)

// ComputeDiscount returns the discount a promotion grants on a subtotal.
// Percentage discounts are clamped to max_discount_amount when set; the
// cap does not apply to fixed discounts.
func ComputeDiscount(p *models.Promotion, subtotal float64) float64 {
	var discount float64
	switch p.DiscountType {
	case models.DiscountPercentage:
		discount = subtotal * p.DiscountValue / 100
		if p.MaxDiscountAmount != nil && discount > *p.MaxDiscountAmount {
			discount = *p.MaxDiscountAmount
		}
	case models.DiscountFixed:
		discount = p.DiscountValue
	}
	return discount
}

// PromotionStoreMatches reports whether a promotion may be applied to an
// order resolved to storeID. A NULL promotion store means chain-wide.
func PromotionStoreMatches(p *models.Promotion, storeID *uint) bool {
	if p.StoreID == nil {
		return true
	}
	return storeID != nil && *storeID == *p.StoreID
}

// ApplicablePromotions lists active bill_amount promotions a subtotal
// qualifies for at a store, highest threshold first: the promotion with
// the largest min_bill_amount is considered the most specific offer.
func ApplicablePromotions(db *gorm.DB, subtotal float64, storeID *uint, now time.Time) ([]models.Promotion, error) {
	q := db.Model(&models.Promotion{}).
		Where("status = ?", models.PromotionActive).
		Where("type = ?", models.PromotionTypeBillAmount).
		Where("start_date <= ? AND end_date >= ?", now, now).
		Where("min_bill_amount <= ?", subtotal)
	if storeID != nil {
		q = q.Where("store_id = ? OR store_id IS NULL", *storeID)
	} else {
		q = q.Where("store_id IS NULL")
	}

	var promotions []models.Promotion
	err := q.Order("min_bill_amount DESC").Find(&promotions).Error
	return promotions, err
}

// ValidatePromotion verifies a client-proposed promotion id against a
// subtotal and returns the candidate discount. The store check is not
// done here: order creation resolves the store after the assignee, so
// the caller re-checks with PromotionStoreMatches once it is known.
func ValidatePromotion(db *gorm.DB, promotionID uint, subtotal float64, now time.Time) (*models.Promotion, float64, error) {
	var promo models.Promotion
	err := db.First(&promo, promotionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, utils.NewValidationError("promotion not found")
	}
	if err != nil {
		return nil, 0, err
	}

	if promo.Status != models.PromotionActive {
		return nil, 0, utils.NewValidationError("promotion is not active")
	}
	if promo.Type != models.PromotionTypeBillAmount {
		return nil, 0, utils.NewValidationError("unsupported promotion type")
	}
	if now.Before(promo.StartDate) || now.After(promo.EndDate) {
		return nil, 0, utils.NewValidationError("promotion is not in its active period")
	}
	if subtotal < promo.MinBillAmount {
		return nil, 0, utils.NewValidationError("order total does not reach the promotion minimum")
	}

	return &promo, ComputeDiscount(&promo, subtotal), nil
}
