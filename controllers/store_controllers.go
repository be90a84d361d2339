package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/models"
	"github.com/huyphamdev/laundry-pos/utils"
)

type StoreController struct {
	DB *gorm.DB
}

func NewStoreController(db *gorm.DB) *StoreController {
	return &StoreController{DB: db}
}

func (sc *StoreController) CreateStore(c *gin.Context) {
	p := principalFromContext(c)
	if p.Role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	store := models.Store{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		AdminID: &p.ID,
		Status:  "active",
	}
	if err := sc.DB.Create(&store).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Store created", store)
}

// GetAllStores -> admin sees the chain, employer their own store, root
// nothing (vendor account).
func (sc *StoreController) GetAllStores(c *gin.Context) {
	p := principalFromContext(c)

	var stores []models.Store
	q := sc.DB.Order("id")
	switch p.Role {
	case models.RoleAdmin:
		q = q.Where("admin_id = ?", p.ID)
	case models.RoleEmployer:
		if p.StoreID == nil {
			utils.RespondJSON(c, http.StatusOK, "List of stores", stores)
			return
		}
		q = q.Where("id = ?", *p.StoreID)
	default:
		utils.RespondJSON(c, http.StatusOK, "List of stores", stores)
		return
	}

	if err := q.Find(&stores).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of stores", stores)
}

func (sc *StoreController) UpdateStore(c *gin.Context) {
	p := principalFromContext(c)
	if p.Role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	id, err := parseUintParam(c, "store_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var store models.Store
	if err := sc.DB.Where("id = ? AND admin_id = ?", id, p.ID).First(&store).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("store"))
		return
	}

	var req struct {
		Name    *string `json:"name"`
		Address *string `json:"address"`
		Phone   *string `json:"phone"`
		Status  *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		store.Name = *req.Name
	}
	if req.Address != nil {
		store.Address = *req.Address
	}
	if req.Phone != nil {
		store.Phone = *req.Phone
	}
	if req.Status != nil {
		store.Status = *req.Status
	}

	if err := sc.DB.Save(&store).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Store updated", store)
}
