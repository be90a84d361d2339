package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/huyphamdev/laundry-pos/models"
)

func ptrFloat(v float64) *float64 { return &v }
func ptrUint(v uint) *uint        { return &v }

func TestComputeDiscountPercentageClamp(t *testing.T) {
	promo := &models.Promotion{
		DiscountType:      models.DiscountPercentage,
		DiscountValue:     50,
		MaxDiscountAmount: ptrFloat(20000),
	}
	// 50% of 100000 would be 50000; the cap wins
	assert.Equal(t, 20000.0, ComputeDiscount(promo, 100000))

	// below the cap the percentage applies untouched
	assert.Equal(t, 15000.0, ComputeDiscount(promo, 30000))
}

func TestComputeDiscountPercentageWithoutCap(t *testing.T) {
	promo := &models.Promotion{
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
	}
	assert.Equal(t, 10000.0, ComputeDiscount(promo, 100000))
}

func TestComputeDiscountFixedIgnoresCap(t *testing.T) {
	promo := &models.Promotion{
		DiscountType:      models.DiscountFixed,
		DiscountValue:     30000,
		MaxDiscountAmount: ptrFloat(5000),
	}
	assert.Equal(t, 30000.0, ComputeDiscount(promo, 100000))
}

func TestPromotionStoreMatches(t *testing.T) {
	global := &models.Promotion{}
	assert.True(t, PromotionStoreMatches(global, nil))
	assert.True(t, PromotionStoreMatches(global, ptrUint(3)))

	scoped := &models.Promotion{StoreID: ptrUint(3)}
	assert.True(t, PromotionStoreMatches(scoped, ptrUint(3)))
	assert.False(t, PromotionStoreMatches(scoped, ptrUint(4)))
	assert.False(t, PromotionStoreMatches(scoped, nil))
}

func TestApplicablePromotionsOrderingAndFilters(t *testing.T) {
	db := newTestDB(t, "promo_applicable")
	now := time.Now()

	store := models.Store{Name: "S", Status: "active"}
	db.Create(&store)

	active := func(name string, minBill float64, storeID *uint) models.Promotion {
		return models.Promotion{
			Name:          name,
			Type:          models.PromotionTypeBillAmount,
			MinBillAmount: minBill,
			DiscountType:  models.DiscountFixed,
			DiscountValue: 1000,
			StartDate:     now.Add(-24 * time.Hour),
			EndDate:       now.Add(24 * time.Hour),
			Status:        models.PromotionActive,
			StoreID:       storeID,
		}
	}

	low := active("low", 10000, nil)
	high := active("high", 90000, &store.ID)
	tooHigh := active("too-high", 200000, nil)
	expired := active("expired", 0, nil)
	expired.EndDate = now.Add(-1 * time.Hour)
	inactive := active("inactive", 0, nil)
	inactive.Status = models.PromotionInactive
	otherStore := active("other-store", 0, ptrUint(9999))

	for _, p := range []*models.Promotion{&low, &high, &tooHigh, &expired, &inactive, &otherStore} {
		assert.NoError(t, db.Create(p).Error)
	}

	promotions, err := ApplicablePromotions(db, 100000, &store.ID, now)
	assert.NoError(t, err)

	names := make([]string, 0, len(promotions))
	for _, p := range promotions {
		names = append(names, p.Name)
	}
	// highest threshold surfaces first
	assert.Equal(t, []string{"high", "low"}, names)
}

func TestValidatePromotion(t *testing.T) {
	db := newTestDB(t, "promo_validate")
	now := time.Now()

	promo := models.Promotion{
		Name:              "weekend",
		Type:              models.PromotionTypeBillAmount,
		MinBillAmount:     50000,
		DiscountType:      models.DiscountPercentage,
		DiscountValue:     50,
		MaxDiscountAmount: ptrFloat(20000),
		StartDate:         now.Add(-time.Hour),
		EndDate:           now.Add(time.Hour),
		Status:            models.PromotionActive,
	}
	assert.NoError(t, db.Create(&promo).Error)

	got, discount, err := ValidatePromotion(db, promo.ID, 100000, now)
	assert.NoError(t, err)
	assert.Equal(t, promo.ID, got.ID)
	assert.Equal(t, 20000.0, discount)

	// subtotal below the threshold
	_, _, err = ValidatePromotion(db, promo.ID, 40000, now)
	assert.Error(t, err)
	assert.Equal(t, 400, asAppError(t, err).Code)

	// unknown id
	_, _, err = ValidatePromotion(db, 9999, 100000, now)
	assert.Error(t, err)
	assert.Equal(t, 400, asAppError(t, err).Code)

	// outside the active period
	_, _, err = ValidatePromotion(db, promo.ID, 100000, now.Add(2*time.Hour))
	assert.Error(t, err)
}
