// models/customer.go
package models

import "time"

// MaxActiveReservations caps confirmed + checked-in reservations per customer.
const MaxActiveReservations = 5

type Customer struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name     string `gorm:"column:name;size:50;not null" json:"name"`
	Email    string `gorm:"column:email;size:254;uniqueIndex;not null" json:"email"`
	Phone    string `gorm:"column:phone;size:20" json:"phone"`
	Username string `gorm:"column:username;size:50;uniqueIndex;not null" json:"username"`

	// store hashed password, never return in JSON
	PasswordHash string `gorm:"column:password_hash;size:255" json:"-"`

	ActiveReservations int `gorm:"column:active_reservations;not null;default:0" json:"active_reservations"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
