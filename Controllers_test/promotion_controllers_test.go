package Controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/controllers"
	"github.com/huyphamdev/laundry-pos/models"
	"github.com/huyphamdev/laundry-pos/utils"
)

func setupPromotionRouter(db *gorm.DB, userID uint, role string, storeID *uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(asPrincipal(userID, role, storeID))

	promoCtrl := controllers.NewPromotionController(db)
	router.POST("/promotions/applicable", promoCtrl.GetApplicablePromotions)
	return router
}

func TestApplicablePromotionsDiscovery(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders(t, "ctl_promo")
	store, employer, _ := seedStoreWithEmployer(t, db, "p")
	router := setupPromotionRouter(db, employer.ID, models.RoleEmployer, &store.ID)

	now := time.Now()
	mk := func(name string, minBill float64, storeID *uint) {
		db.Create(&models.Promotion{
			Name: name, Type: models.PromotionTypeBillAmount,
			MinBillAmount: minBill, DiscountType: models.DiscountPercentage,
			DiscountValue: 10,
			StartDate:     now.Add(-time.Hour), EndDate: now.Add(time.Hour),
			Status: models.PromotionActive, StoreID: storeID,
		})
	}
	mk("global-low", 10000, nil)
	mk("store-high", 80000, &store.ID)
	mk("too-demanding", 500000, nil)

	w := doJSON(router, "POST", "/promotions/applicable", map[string]interface{}{
		"bill_amount": 100000,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Promotions []struct {
				Name           string  `json:"name"`
				DiscountAmount float64 `json:"discount_amount"`
			} `json:"promotions"`
			CustomerOrderCount int `json:"customer_order_count"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// highest threshold first, each with its computed discount
	assert.Len(t, resp.Data.Promotions, 2)
	assert.Equal(t, "store-high", resp.Data.Promotions[0].Name)
	assert.Equal(t, 10000.0, resp.Data.Promotions[0].DiscountAmount)
	assert.Equal(t, "global-low", resp.Data.Promotions[1].Name)
}

func TestApplicablePromotionsEchoesCustomerOrderCount(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders(t, "ctl_promo_cust")
	store, employer, _ := seedStoreWithEmployer(t, db, "q")
	router := setupPromotionRouter(db, employer.ID, models.RoleEmployer, &store.ID)

	db.Create(&models.Customer{Name: "Regular", Phone: "0908888888", TotalOrders: 7})

	w := doJSON(router, "POST", "/promotions/applicable", map[string]interface{}{
		"bill_amount":    50000,
		"customer_phone": "0908888888",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			CustomerOrderCount int `json:"customer_order_count"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Data.CustomerOrderCount)
}
