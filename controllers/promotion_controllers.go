package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/models"
	"github.com/huyphamdev/laundry-pos/services"
	"github.com/huyphamdev/laundry-pos/utils"
)

type PromotionController struct {
	DB *gorm.DB
}

func NewPromotionController(db *gorm.DB) *PromotionController {
	return &PromotionController{DB: db}
}

func (pc *PromotionController) CreatePromotion(c *gin.Context) {
	p := principalFromContext(c)
	if p.Role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		Name              string    `json:"name" binding:"required"`
		MinBillAmount     float64   `json:"min_bill_amount"`
		DiscountType      string    `json:"discount_type" binding:"required"`
		DiscountValue     float64   `json:"discount_value" binding:"required,gt=0"`
		MaxDiscountAmount *float64  `json:"max_discount_amount"`
		StartDate         time.Time `json:"start_date" binding:"required"`
		EndDate           time.Time `json:"end_date" binding:"required"`
		StoreID           *uint     `json:"store_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.DiscountType != models.DiscountPercentage && req.DiscountType != models.DiscountFixed {
		utils.RespondAppError(c, utils.NewValidationError("discount_type must be percentage or fixed"))
		return
	}
	if req.EndDate.Before(req.StartDate) {
		utils.RespondAppError(c, utils.NewValidationError("end_date is before start_date"))
		return
	}
	if req.StoreID != nil {
		ok, err := services.StoreInChain(pc.DB, p.ID, *req.StoreID)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		if !ok {
			utils.RespondAppError(c, utils.NewForbiddenError("store does not belong to your chain"))
			return
		}
	}

	promo := models.Promotion{
		Name:              req.Name,
		Type:              models.PromotionTypeBillAmount,
		MinBillAmount:     req.MinBillAmount,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		MaxDiscountAmount: req.MaxDiscountAmount,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Status:            models.PromotionActive,
		StoreID:           req.StoreID,
	}
	if err := pc.DB.Create(&promo).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Promotion created", promo)
}

func (pc *PromotionController) GetAllPromotions(c *gin.Context) {
	p := principalFromContext(c)

	storeID, err := parseUintQuery(c, "store_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	scope, err := services.ResolveOrderScope(pc.DB, p, storeID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	q := scope.ApplyPromotions(pc.DB.Model(&models.Promotion{}))
	if status := c.Query("status"); status != "" {
		q = q.Where("promotions.status = ?", status)
	}

	var promotions []models.Promotion
	if err := q.Order("promotions.min_bill_amount DESC").Find(&promotions).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of promotions", promotions)
}

func (pc *PromotionController) UpdatePromotion(c *gin.Context) {
	p := principalFromContext(c)
	if p.Role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	id, err := parseUintParam(c, "promotion_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var promo models.Promotion
	q := pc.DB.Where("id = ?", id).
		Where("store_id IS NULL OR store_id IN (SELECT id FROM stores WHERE admin_id = ?)", p.ID)
	if err := q.First(&promo).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("promotion"))
		return
	}

	var req struct {
		Name              *string    `json:"name"`
		MinBillAmount     *float64   `json:"min_bill_amount"`
		DiscountValue     *float64   `json:"discount_value"`
		MaxDiscountAmount *float64   `json:"max_discount_amount"`
		StartDate         *time.Time `json:"start_date"`
		EndDate           *time.Time `json:"end_date"`
		Status            *string    `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		promo.Name = *req.Name
	}
	if req.MinBillAmount != nil {
		promo.MinBillAmount = *req.MinBillAmount
	}
	if req.DiscountValue != nil {
		promo.DiscountValue = *req.DiscountValue
	}
	if req.MaxDiscountAmount != nil {
		promo.MaxDiscountAmount = req.MaxDiscountAmount
	}
	if req.StartDate != nil {
		promo.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		promo.EndDate = *req.EndDate
	}
	if req.Status != nil {
		if *req.Status != models.PromotionActive && *req.Status != models.PromotionInactive {
			utils.RespondAppError(c, utils.NewValidationError("status must be active or inactive"))
			return
		}
		promo.Status = *req.Status
	}

	// Placed orders are unaffected: they store the resolved discount
	// amount, not a live link.
	if err := pc.DB.Save(&promo).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Promotion updated", promo)
}

// GetApplicablePromotions -> discovery endpoint: which promotions does
// this bill qualify for at this store, best (highest threshold) first.
// Order creation does not auto-apply the winner; the client proposes a
// promotion id and the server verifies it.
func (pc *PromotionController) GetApplicablePromotions(c *gin.Context) {
	p := principalFromContext(c)

	var req struct {
		CustomerID    *uint   `json:"customer_id"`
		CustomerPhone string  `json:"customer_phone"`
		BillAmount    float64 `json:"bill_amount" binding:"required,gt=0"`
		StoreID       *uint   `json:"store_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var storeID *uint
	switch p.Role {
	case models.RoleAdmin:
		if req.StoreID != nil {
			ok, err := services.StoreInChain(pc.DB, p.ID, *req.StoreID)
			if err != nil {
				utils.RespondAppError(c, err)
				return
			}
			if !ok {
				utils.RespondAppError(c, utils.NewForbiddenError("store does not belong to your chain"))
				return
			}
			storeID = req.StoreID
		}
	case models.RoleEmployer:
		if req.StoreID != nil && p.StoreID != nil && *req.StoreID != *p.StoreID {
			utils.RespondAppError(c, utils.NewForbiddenError("store does not belong to you"))
			return
		}
		storeID = p.StoreID
	default:
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	customerOrderCount := 0
	if req.CustomerID != nil || req.CustomerPhone != "" {
		var customer models.Customer
		q := pc.DB
		if req.CustomerID != nil {
			q = q.Where("id = ?", *req.CustomerID)
		} else {
			q = q.Where("phone = ?", req.CustomerPhone)
		}
		if err := q.First(&customer).Error; err == nil {
			customerOrderCount = customer.TotalOrders
		}
	}

	promotions, err := services.ApplicablePromotions(pc.DB, req.BillAmount, storeID, time.Now())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	type candidate struct {
		models.Promotion
		DiscountAmount float64 `json:"discount_amount"`
	}
	candidates := make([]candidate, 0, len(promotions))
	for _, promo := range promotions {
		candidates = append(candidates, candidate{
			Promotion:      promo,
			DiscountAmount: services.ComputeDiscount(&promo, req.BillAmount),
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Applicable promotions", gin.H{
		"promotions":           candidates,
		"customer_order_count": customerOrderCount,
	})
}
