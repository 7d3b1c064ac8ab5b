package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"hotel-reservations/models"
)

type EventRepository struct {
	db *gorm.DB
}

func (r *EventRepository) Create(ctx context.Context, ev *models.ReservationEvent) error {
	if err := r.db.WithContext(ctx).Create(ev).Error; err != nil {
		return fmt.Errorf("record event %s: %w", ev.Type, err)
	}
	return nil
}

// ListByReservation returns the history of a reservation, oldest first. The
// history outlives the reservation itself.
func (r *EventRepository) ListByReservation(ctx context.Context, reservationID uint) ([]models.ReservationEvent, error) {
	var out []models.ReservationEvent
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list events for reservation %d: %w", reservationID, err)
	}
	return out, nil
}
