package models

import "time"

const (
	RoleRoot     = "root"
	RoleAdmin    = "admin"
	RoleEmployer = "employer"
)

type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Email      string    `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password   string    `gorm:"type:varchar(255);not null" json:"-"`
	Role       string    `gorm:"type:varchar(20);not null" json:"role"`
	StoreID    *uint     `gorm:"index" json:"store_id,omitempty"`
	Store      *Store    `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	HourlyRate float64   `gorm:"type:decimal(12,2);not null;default:0" json:"hourly_rate"`
	Status     string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
