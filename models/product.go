package models

import "time"

const (
	ProductActive   = "active"
	ProductInactive = "inactive"
)

type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Unit      string    `gorm:"type:varchar(20);not null;default:'kg'" json:"unit"`
	Price     float64   `gorm:"type:decimal(12,2);not null" json:"price"`
	Status    string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	StoreID   uint      `gorm:"not null;index" json:"store_id"`
	Store     *Store    `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
