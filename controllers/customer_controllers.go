package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/models"
	"github.com/huyphamdev/laundry-pos/utils"
)

type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

// GetAllCustomers -> search by phone or name. Walk-in rows carry a
// synthetic temp_* phone and are excluded from phone search; they are
// only reachable through the order that created them.
func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	q := cc.DB.Model(&models.Customer{})

	if phone := c.Query("phone"); phone != "" {
		q = q.Where("phone LIKE ? AND phone NOT LIKE 'temp_%'", "%"+phone+"%")
	}
	if name := c.Query("name"); name != "" {
		q = q.Where("name LIKE ?", "%"+name+"%")
	}

	var customers []models.Customer
	if err := q.Order("total_spent DESC").Limit(100).Find(&customers).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

// GetCustomerByID -> profile with lifetime counters. total_orders and
// total_spent only ever grow; deleted or cancelled orders are not
// subtracted.
func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	id, err := parseUintParam(c, "customer_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customer models.Customer
	if err := cc.DB.First(&customer, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("customer"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer detail", customer)
}

func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	id, err := parseUintParam(c, "customer_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customer models.Customer
	if err := cc.DB.First(&customer, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("customer"))
		return
	}

	var req struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil && *req.Phone != "" {
		customer.Phone = *req.Phone
	}

	if err := cc.DB.Save(&customer).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer updated", customer)
}
