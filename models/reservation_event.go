package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event types recorded in the reservation history.
const (
	EventCreated       = "reservation.created"
	EventUpdated       = "reservation.updated"
	EventStatusChanged = "reservation.status_changed"
	EventRepriced      = "reservation.repriced"
	EventDeleted       = "reservation.deleted"
)

// ReservationEvent is one entry of a reservation's lifecycle history. It is
// written in the same transaction as the change it describes and is also the
// body published to the message broker.
type ReservationEvent struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	EventID       string            `gorm:"column:event_id;size:36;uniqueIndex;not null" json:"event_id"`
	ReservationID uint              `gorm:"column:reservation_id;index;not null" json:"reservation_id"`
	Type          string            `gorm:"column:type;size:40;not null" json:"type"`
	FromStatus    ReservationStatus `gorm:"column:from_status;size:20" json:"from_status,omitempty"`
	ToStatus      ReservationStatus `gorm:"column:to_status;size:20" json:"to_status,omitempty"`
	Actor         string            `gorm:"column:actor;size:100" json:"actor,omitempty"`
	Payload       datatypes.JSON    `gorm:"column:payload" json:"payload"`
	CreatedAt     time.Time         `json:"created_at"`
}
