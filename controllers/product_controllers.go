package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/models"
	"github.com/huyphamdev/laundry-pos/services"
	"github.com/huyphamdev/laundry-pos/utils"
)

type ProductController struct {
	DB *gorm.DB
}

func NewProductController(db *gorm.DB) *ProductController {
	return &ProductController{DB: db}
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	p := principalFromContext(c)

	var req struct {
		Name    string  `json:"name" binding:"required"`
		Unit    string  `json:"unit"`
		Price   float64 `json:"price" binding:"required,gt=0"`
		StoreID *uint   `json:"store_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var storeID uint
	switch p.Role {
	case models.RoleAdmin:
		if req.StoreID == nil {
			utils.RespondAppError(c, utils.NewValidationError("store_id is required"))
			return
		}
		ok, err := services.StoreInChain(pc.DB, p.ID, *req.StoreID)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		if !ok {
			utils.RespondAppError(c, utils.NewForbiddenError("store does not belong to your chain"))
			return
		}
		storeID = *req.StoreID
	case models.RoleEmployer:
		if p.StoreID == nil {
			utils.RespondAppError(c, utils.NewValidationError("your account is not linked to a store"))
			return
		}
		storeID = *p.StoreID
	default:
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	unit := req.Unit
	if unit == "" {
		unit = "kg"
	}
	product := models.Product{
		Name:    req.Name,
		Unit:    unit,
		Price:   req.Price,
		Status:  models.ProductActive,
		StoreID: storeID,
	}
	if err := pc.DB.Create(&product).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Product created", product)
}

func (pc *ProductController) GetAllProducts(c *gin.Context) {
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

	q := pc.DB.Model(&models.Product{})
	q = scope.ApplyStoreColumn(q, "products.store_id")
	if status := c.Query("status"); status != "" {
		q = q.Where("products.status = ?", status)
	}

	var products []models.Product
	if err := q.Order("products.id").Find(&products).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of products", products)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	p := principalFromContext(c)

	id, err := parseUintParam(c, "product_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	scope, err := services.ResolveOrderScope(pc.DB, p, nil)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var product models.Product
	q := scope.ApplyStoreColumn(pc.DB.Where("products.id = ?", id), "products.store_id")
	if err := q.First(&product).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("product"))
		return
	}

	var req struct {
		Name   *string  `json:"name"`
		Unit   *string  `json:"unit"`
		Price  *float64 `json:"price"`
		Status *string  `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			utils.RespondAppError(c, utils.NewValidationError("price must be positive"))
			return
		}
		// Existing order items keep the old snapshot price.
		product.Price = *req.Price
	}
	if req.Status != nil {
		if *req.Status != models.ProductActive && *req.Status != models.ProductInactive {
			utils.RespondAppError(c, utils.NewValidationError("status must be active or inactive"))
			return
		}
		product.Status = *req.Status
	}

	if err := pc.DB.Save(&product).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product updated", product)
}

// DeleteProduct retires a product instead of removing the row: order
// items still reference its id for their price snapshots.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	p := principalFromContext(c)

	id, err := parseUintParam(c, "product_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	scope, err := services.ResolveOrderScope(pc.DB, p, nil)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var product models.Product
	q := scope.ApplyStoreColumn(pc.DB.Where("products.id = ?", id), "products.store_id")
	if err := q.First(&product).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("product"))
		return
	}

	if err := pc.DB.Model(&product).Update("status", models.ProductInactive).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product deactivated", gin.H{"product_id": product.ID})
}
