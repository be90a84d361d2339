package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/huyphamdev/laundry-pos/models"
	"github.com/huyphamdev/laundry-pos/utils"
)

type OrderService struct {
	DB *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{DB: db}
}

type OrderItemInput struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required"`
	Note      string  `json:"note"`
}

type CreateOrderInput struct {
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone"`
	Items         []OrderItemInput `json:"items" binding:"required"`
	Note          string           `json:"note"`
	AssignedTo    *uint            `json:"assigned_to"`
	PromotionID   *uint            `json:"promotion_id"`
}

type UpdateOrderInput struct {
	Status     *string           `json:"status"`
	AssignedTo *uint             `json:"assigned_to"`
	Note       *string           `json:"note"`
	Items      *[]OrderItemInput `json:"items"`
}

type ListOrdersFilter struct {
	Status        string
	AssignedTo    *uint
	CustomerPhone string
	MyOrders      bool
	Date          string
	StartDate     string
	EndDate       string
	DebtOnly      bool
	StoreID       *uint
}

// Create builds a new order as one atomic unit: customer upsert, item
// pricing, promotion, assignment, history and customer stats all commit
// together or not at all.
func (s *OrderService) Create(p Principal, in CreateOrderInput) (*models.Order, error) {
	if p.Role != models.RoleAdmin && p.Role != models.RoleEmployer {
		return nil, utils.NewForbiddenError("only store accounts can create orders")
	}
	if len(in.Items) == 0 {
		return nil, utils.NewValidationError("order must contain at least one item")
	}

	var order models.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		customer, err := resolveCustomer(tx, in.CustomerName, in.CustomerPhone)
		if err != nil {
			return err
		}

		items, subtotal, err := priceItems(tx, in.Items)
		if err != nil {
			return err
		}

		// Optimistic pass: the promotion is checked against the
		// subtotal before the store is known.
		var promo *models.Promotion
		var discount float64
		if in.PromotionID != nil {
			promo, discount, err = ValidatePromotion(tx, *in.PromotionID, subtotal, time.Now())
			if err != nil {
				return err
			}
		}

		assignedTo, storeID, err := resolveAssignment(tx, p, in.AssignedTo)
		if err != nil {
			return err
		}

		// Confirm pass: the store came from the assignee, so a
		// store-scoped promotion may turn out not to apply. The
		// order still goes through, just without the discount.
		var promotionID *uint
		if promo != nil {
			if PromotionStoreMatches(promo, storeID) {
				promotionID = &promo.ID
			} else {
				discount = 0
			}
		}

		code, err := GenerateOrderCode(tx)
		if err != nil {
			return err
		}

		final := subtotal - discount
		if final < 0 {
			final = 0
		}

		order = models.Order{
			Code:           code,
			CustomerID:     customer.ID,
			Status:         models.OrderCreated,
			StoreID:        storeID,
			AssignedTo:     assignedTo,
			CreatedBy:      p.ID,
			TotalAmount:    subtotal,
			DiscountAmount: discount,
			FinalAmount:    final,
			PromotionID:    promotionID,
			Note:           in.Note,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.OrderItems = items

		if err := appendStatusHistory(tx, order.ID, models.OrderCreated, p.ID); err != nil {
			return err
		}

		if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).Updates(map[string]interface{}{
			"total_orders": gorm.Expr("total_orders + 1"),
			"total_spent":  gorm.Expr("total_spent + ?", final),
		}).Error; err != nil {
			return err
		}

		order.Customer = customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Get loads one order with items and history, scoped to the caller. An
// order outside the caller's scope reads as not found.
func (s *OrderService) Get(p Principal, orderID uint) (*models.Order, error) {
	scope, err := ResolveOrderScope(s.DB, p, nil)
	if err != nil {
		return nil, err
	}

	var order models.Order
	q := s.DB.
		Preload("OrderItems").
		Preload("OrderItems.Product").
		Preload("StatusHistory").
		Preload("Customer").
		Where("orders.id = ?", orderID)
	err = scope.ApplyOrders(q).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("order")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns scoped orders with their items batched in by Preload.
func (s *OrderService) List(p Principal, f ListOrdersFilter) ([]models.Order, error) {
	scope, err := ResolveOrderScope(s.DB, p, f.StoreID)
	if err != nil {
		return nil, err
	}

	q := s.DB.Model(&models.Order{}).
		Preload("OrderItems").
		Preload("OrderItems.Product").
		Preload("Customer")
	q = scope.ApplyOrders(q)

	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	if f.AssignedTo != nil {
		q = q.Where("orders.assigned_to = ?", *f.AssignedTo)
	}
	if f.CustomerPhone != "" {
		q = q.Joins("JOIN customers ON customers.id = orders.customer_id").
			Where("customers.phone LIKE ?", "%"+f.CustomerPhone+"%")
	}
	if f.MyOrders {
		q = q.Where("orders.assigned_to = ? OR orders.created_by = ?", p.ID, p.ID)
	}
	if f.Date != "" {
		q = q.Where("DATE(orders.created_at) = ?", f.Date)
	}
	if f.StartDate != "" {
		q = q.Where("DATE(orders.created_at) >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		q = q.Where("DATE(orders.created_at) <= ?", f.EndDate)
	}
	if f.DebtOnly {
		q = q.Where("orders.is_debt = ? AND orders.debt_paid_at IS NULL", true)
	}

	var orders []models.Order
	err = q.Order("orders.created_at DESC").Find(&orders).Error
	return orders, err
}

// Update applies a partial update. Item replacement is destructive then
// additive: every existing line is deleted and the new set inserted, and
// the total recomputed from scratch. The discount figure is left as it
// was; only the final amount is re-clamped against the new total.
func (s *OrderService) Update(p Principal, orderID uint, in UpdateOrderInput) (*models.Order, error) {
	order, err := s.Get(p, orderID)
	if err != nil {
		return nil, err
	}

	if in.Status != nil && !models.ValidOrderStatus(*in.Status) {
		return nil, utils.NewValidationError("invalid order status: " + *in.Status)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if in.AssignedTo != nil {
			if err := validateAssignee(tx, p, *in.AssignedTo); err != nil {
				return err
			}
			order.AssignedTo = in.AssignedTo
		}
		if in.Note != nil {
			order.Note = *in.Note
		}
		if in.Status != nil && *in.Status != order.Status {
			order.Status = *in.Status
			if err := appendStatusHistory(tx, order.ID, *in.Status, p.ID); err != nil {
				return err
			}
		}

		if in.Items != nil {
			if len(*in.Items) == 0 {
				return utils.NewValidationError("order must contain at least one item")
			}
			items, subtotal, err := priceItems(tx, *in.Items)
			if err != nil {
				return err
			}
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].OrderID = order.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
			order.OrderItems = items
			order.TotalAmount = subtotal
			order.FinalAmount = subtotal - order.DiscountAmount
			if order.FinalAmount < 0 {
				order.FinalAmount = 0
			}
		}

		order.UpdatedBy = &p.ID
		return tx.Omit("OrderItems", "StatusHistory", "Customer").Save(order).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus is the narrow counter workflow: an order is either open
// (created) or settled (completed), and settling requires a payment
// method. Cancelled orders and unsettled debts are stuck where they are.
func (s *OrderService) UpdateStatus(p Principal, orderID uint, status, paymentMethod string) (*models.Order, error) {
	if status != models.OrderCreated && status != models.OrderCompleted {
		return nil, utils.NewValidationError("status must be created or completed")
	}

	order, err := s.Get(p, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == models.OrderCancelled {
		return nil, utils.NewValidationError("cancelled orders cannot change status")
	}
	if order.Status == status {
		return nil, utils.NewValidationError("order is already " + status)
	}

	if status == models.OrderCompleted {
		if !models.ValidPaymentMethod(paymentMethod) {
			return nil, utils.NewValidationError("payment_method must be cash or transfer")
		}
		order.PaymentMethod = &paymentMethod
	} else {
		if order.IsDebt {
			return nil, utils.NewValidationError("settle the debt before reopening the order")
		}
		order.PaymentMethod = nil
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		order.Status = status
		order.UpdatedBy = &p.ID
		if err := tx.Omit("OrderItems", "StatusHistory", "Customer").Save(order).Error; err != nil {
			return err
		}
		return appendStatusHistory(tx, order.ID, status, p.ID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// MarkDebt defers payment collection on a completed order (ghi nợ).
func (s *OrderService) MarkDebt(p Principal, orderID uint) (*models.Order, error) {
	order, err := s.Get(p, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderCompleted {
		return nil, utils.NewValidationError("only completed orders can be marked as debt")
	}
	if order.IsDebt {
		return nil, utils.NewValidationError("order is already marked as debt")
	}

	order.IsDebt = true
	order.DebtPaidAt = nil
	order.UpdatedBy = &p.ID
	if err := s.DB.Omit("OrderItems", "StatusHistory", "Customer").Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// MarkDebtPaid records collection of a deferred payment. Revenue reports
// attribute the amount to debt_paid_at, not the completion date.
func (s *OrderService) MarkDebtPaid(p Principal, orderID uint) (*models.Order, error) {
	order, err := s.Get(p, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsDebt {
		return nil, utils.NewValidationError("order is not marked as debt")
	}

	now := time.Now()
	order.IsDebt = false
	order.DebtPaidAt = &now
	order.UpdatedBy = &p.ID
	if err := s.DB.Omit("OrderItems", "StatusHistory", "Customer").Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// Delete hard-deletes an order. Items and history go with it through the
// foreign keys; there is no recycle bin.
func (s *OrderService) Delete(p Principal, orderID uint) error {
	if p.Role != models.RoleAdmin {
		return utils.NewForbiddenError("only admins can delete orders")
	}
	order, err := s.Get(p, orderID)
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderStatusHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, order.ID).Error
	})
}

func appendStatusHistory(tx *gorm.DB, orderID uint, status string, changedBy uint) error {
	return tx.Create(&models.OrderStatusHistory{
		OrderID:   orderID,
		Status:    status,
		ChangedBy: changedBy,
	}).Error
}

// resolveCustomer finds or creates the customer for an order. Walk-in
// customers without a phone get a synthetic unique placeholder so the
// phone uniqueness constraint holds.
func resolveCustomer(tx *gorm.DB, name, phone string) (*models.Customer, error) {
	if phone != "" {
		var customer models.Customer
		err := tx.Where("phone = ?", phone).First(&customer).Error
		if err == nil {
			if name != "" && name != customer.Name {
				if err := tx.Model(&customer).Update("name", name).Error; err != nil {
					return nil, err
				}
				customer.Name = name
			}
			return &customer, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else {
		phone = fmt.Sprintf("temp_%d_%s", time.Now().UnixMilli(), randAlnum(6))
	}

	if name == "" {
		name = "Walk-in customer"
	}
	customer := models.Customer{Name: name, Phone: phone}
	if err := tx.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// priceItems validates every requested line and snapshots the current
// product price into it. Any bad line fails the whole order.
func priceItems(tx *gorm.DB, inputs []OrderItemInput) ([]models.OrderItem, float64, error) {
	items := make([]models.OrderItem, 0, len(inputs))
	var subtotal float64
	for _, in := range inputs {
		if in.Quantity <= 0 || math.IsInf(in.Quantity, 0) || math.IsNaN(in.Quantity) {
			return nil, 0, utils.NewValidationError(fmt.Sprintf("invalid quantity for product %d", in.ProductID))
		}
		var product models.Product
		err := tx.Where("id = ? AND status = ?", in.ProductID, models.ProductActive).First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, utils.NewValidationError(fmt.Sprintf("product %d is not available", in.ProductID))
		}
		if err != nil {
			return nil, 0, err
		}
		item := models.OrderItem{
			ProductID: product.ID,
			Quantity:  in.Quantity,
			UnitPrice: product.Price,
			Note:      in.Note,
		}
		items = append(items, item)
		subtotal += item.LineTotal()
	}
	return items, subtotal, nil
}

// resolveAssignment picks the employee responsible for the order and,
// from them, the store. Admins may hand the order to anyone in their
// chain and default to the first active employer; employers default to
// themselves.
func resolveAssignment(tx *gorm.DB, p Principal, requested *uint) (*uint, *uint, error) {
	switch p.Role {
	case models.RoleAdmin:
		if requested != nil {
			var assignee models.User
			if err := tx.First(&assignee, *requested).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, nil, utils.NewValidationError("assignee not found")
				}
				return nil, nil, err
			}
			ok, err := UserInChain(tx, p.ID, assignee.ID)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				return nil, nil, utils.NewForbiddenError("assignee is not in your chain")
			}
			return &assignee.ID, assignee.StoreID, nil
		}

		var assignee models.User
		err := tx.Joins("JOIN stores ON stores.id = users.store_id").
			Where("users.role = ? AND users.status = ? AND stores.admin_id = ?",
				models.RoleEmployer, "active", p.ID).
			Order("users.id").
			First(&assignee).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Chain has no employees yet; the order stays unassigned.
			return nil, p.StoreID, nil
		}
		if err != nil {
			return nil, nil, err
		}
		return &assignee.ID, assignee.StoreID, nil

	case models.RoleEmployer:
		if requested != nil && *requested != p.ID {
			var assignee models.User
			if err := tx.First(&assignee, *requested).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, nil, utils.NewValidationError("assignee not found")
				}
				return nil, nil, err
			}
			if assignee.StoreID == nil || p.StoreID == nil || *assignee.StoreID != *p.StoreID {
				return nil, nil, utils.NewForbiddenError("assignee works at a different store")
			}
			return &assignee.ID, assignee.StoreID, nil
		}
		return &p.ID, p.StoreID, nil
	}
	return nil, nil, utils.NewForbiddenError("only store accounts can be assigned orders")
}

// validateAssignee is the PATCH-time variant of assignment validation.
func validateAssignee(tx *gorm.DB, p Principal, assigneeID uint) error {
	_, _, err := resolveAssignment(tx, p, &assigneeID)
	return err
}
