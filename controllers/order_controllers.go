package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/services"
	"github.com/huyphamdev/laundry-pos/utils"
)

type OrderController struct {
	DB      *gorm.DB
	Service *services.OrderService
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{DB: db, Service: services.NewOrderService(db)}
}

// GetAllOrders -> scoped order list with items
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	p := principalFromContext(c)

	storeID, err := parseUintQuery(c, "store_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	assignedTo, err := parseUintQuery(c, "assigned_to")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	filter := services.ListOrdersFilter{
		Status:        c.Query("status"),
		AssignedTo:    assignedTo,
		CustomerPhone: c.Query("customer_phone"),
		MyOrders:      c.Query("my_orders") == "true",
		Date:          c.Query("date"),
		StartDate:     c.Query("start_date"),
		EndDate:       c.Query("end_date"),
		DebtOnly:      c.Query("debt_only") == "true",
		StoreID:       storeID,
	}

	orders, err := oc.Service.List(p, filter)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID -> order detail with items and full status history
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := parseUintParam(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Service.Get(principalFromContext(c), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

func (oc *OrderController) CreateOrder(c *gin.Context) {
	var input services.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Service.Create(principalFromContext(c), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %s created (customer=%d, final=%.2f)",
		order.Code, order.CustomerID, order.FinalAmount)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

func (oc *OrderController) UpdateOrder(c *gin.Context) {
	id, err := parseUintParam(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var input services.UpdateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Service.Update(principalFromContext(c), id, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

// UpdateOrderStatus -> the counter workflow: created <-> completed, with
// a payment method required on completion.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, err := parseUintParam(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		Status        string `json:"status" binding:"required"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Service.UpdateStatus(principalFromContext(c), id, body.Status, body.PaymentMethod)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// MarkDebt -> defer payment on a completed order
func (oc *OrderController) MarkDebt(c *gin.Context) {
	id, err := parseUintParam(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Service.MarkDebt(principalFromContext(c), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order marked as debt", order)
}

// MarkDebtPaid -> collect a deferred payment
func (oc *OrderController) MarkDebtPaid(c *gin.Context) {
	id, err := parseUintParam(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Service.MarkDebtPaid(principalFromContext(c), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Debt collected", order)
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, err := parseUintParam(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := oc.Service.Delete(principalFromContext(c), id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order deleted", gin.H{"order_id": id})
}
