package models

import "time"

// OrderStatusHistory is append-only: one row per transition, including the
// creation transition. Rows are never updated or deleted.
type OrderStatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Order     Order     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Status    string    `gorm:"type:varchar(20);not null" json:"status"`
	ChangedBy uint      `gorm:"not null" json:"changed_by"`
	CreatedAt time.Time `json:"created_at"`
}
