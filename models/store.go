package models

import "time"

type Store struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	Address         string    `gorm:"type:varchar(255)" json:"address"`
	Phone           string    `gorm:"type:varchar(20)" json:"phone"`
	AdminID         *uint     `gorm:"index" json:"admin_id,omitempty"`
	Admin           *User     `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	SharedAccountID *uint     `json:"shared_account_id,omitempty"`
	Status          string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
