package models

import "time"

const (
	PromotionTypeBillAmount = "bill_amount"

	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"

	PromotionActive   = "active"
	PromotionInactive = "inactive"
)

type Promotion struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"type:varchar(255);not null" json:"name"`
	Type              string    `gorm:"type:varchar(20);not null;default:'bill_amount'" json:"type"`
	MinBillAmount     float64   `gorm:"type:decimal(12,2);not null;default:0" json:"min_bill_amount"`
	DiscountType      string    `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue     float64   `gorm:"type:decimal(12,2);not null" json:"discount_value"`
	MaxDiscountAmount *float64  `gorm:"type:decimal(12,2)" json:"max_discount_amount,omitempty"`
	StartDate         time.Time `gorm:"not null" json:"start_date"`
	EndDate           time.Time `gorm:"not null" json:"end_date"`
	Status            string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	// NULL store_id means the promotion applies chain-wide.
	StoreID   *uint     `gorm:"index" json:"store_id,omitempty"`
	Store     *Store    `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
