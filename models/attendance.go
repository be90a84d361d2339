package models

import "time"

// Attendance is one work shift of one employee: check-in stamps the row,
// check-out closes it. Payroll sums the closed shifts.
type Attendance struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	StoreID   uint       `gorm:"not null;index" json:"store_id"`
	CheckIn   time.Time  `gorm:"not null" json:"check_in"`
	CheckOut  *time.Time `json:"check_out,omitempty"`
	Note      string     `gorm:"type:text" json:"note"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Hours returns the shift length in hours, zero while still open.
func (a *Attendance) Hours() float64 {
	if a.CheckOut == nil {
		return 0
	}
	return a.CheckOut.Sub(a.CheckIn).Hours()
}
