package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Reservation links one customer to one room for a stay.
//
// CustomerName and RoomNumber are snapshots copied when the reservation is
// created or when its customer/room is changed through the reservation
// itself. Edits made directly on the Customer or Room are not propagated.
type Reservation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CustomerID   uint   `gorm:"column:customer_id;index;not null" json:"customer_id"`
	CustomerName string `gorm:"column:customer_name;size:50" json:"customer_name"`
	RoomID       uint   `gorm:"column:room_id;index;not null" json:"room_id"`
	RoomNumber   int    `gorm:"column:room_number" json:"room_number"`

	CheckInDate  datatypes.Date  `gorm:"column:check_in_date;index" json:"check_in_date"`
	CheckOutDate datatypes.Date  `gorm:"column:check_out_date;index" json:"check_out_date"`
	TotalAmount  decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null" json:"total_amount"`

	Status ReservationStatus `gorm:"column:status;size:20;index;not null" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckIn returns the check-in date as a time.Time.
func (r Reservation) CheckIn() time.Time { return time.Time(r.CheckInDate) }

// CheckOut returns the check-out date as a time.Time.
func (r Reservation) CheckOut() time.Time { return time.Time(r.CheckOutDate) }
