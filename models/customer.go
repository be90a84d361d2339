package models

import (
	"strings"
	"time"
)

type Customer struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Phone       string    `gorm:"type:varchar(50);unique;not null" json:"phone"`
	TotalOrders int       `gorm:"not null;default:0" json:"total_orders"`
	TotalSpent  float64   `gorm:"type:decimal(14,2);not null;default:0" json:"total_spent"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsWalkIn reports whether the row was created for a customer without a
// phone number (synthetic temp_* placeholder, not searchable).
func (c *Customer) IsWalkIn() bool {
	return strings.HasPrefix(c.Phone, "temp_")
}
