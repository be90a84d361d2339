package models

import "time"

const (
	OrderCreated       = "created"
	OrderWashing       = "washing"
	OrderDrying        = "drying"
	OrderWaitingPickup = "waiting_pickup"
	OrderCompleted     = "completed"
	OrderCancelled     = "cancelled"

	PaymentCash     = "cash"
	PaymentTransfer = "transfer"
)

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderCreated, OrderWashing, OrderDrying, OrderWaitingPickup, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is an accepted settlement method.
func ValidPaymentMethod(m string) bool {
	return m == PaymentCash || m == PaymentTransfer
}

type Order struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Code       string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Status     string    `gorm:"type:varchar(20);not null;default:'created'" json:"status"`

	// store_id is nullable: rows created before store scoping was
	// introduced carry NULL and are matched through their assignee.
	StoreID    *uint  `gorm:"index" json:"store_id,omitempty"`
	Store      *Store `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	AssignedTo *uint  `gorm:"index" json:"assigned_to,omitempty"`
	Assignee   *User  `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	CreatedBy  uint   `gorm:"not null;index" json:"created_by"`
	UpdatedBy  *uint  `json:"updated_by,omitempty"`

	TotalAmount    float64 `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	DiscountAmount float64 `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	FinalAmount    float64 `gorm:"type:decimal(12,2);not null;default:0" json:"final_amount"`
	PromotionID    *uint   `json:"promotion_id,omitempty"`

	PaymentMethod *string    `gorm:"type:varchar(10)" json:"payment_method,omitempty"`
	IsDebt        bool       `gorm:"not null;default:false" json:"is_debt"`
	DebtPaidAt    *time.Time `json:"debt_paid_at,omitempty"`

	Note      string    `gorm:"type:text" json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrderItems    []OrderItem          `gorm:"foreignKey:OrderID" json:"order_items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID" json:"status_history,omitempty"`
}
