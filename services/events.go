package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"hotel-reservations/models"
)

// EventPublisher ships committed reservation events to the outside world.
// Publishing happens after commit and failures never undo the change.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.ReservationEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.ReservationEvent) error { return nil }

func newEvent(typ string, res models.Reservation, from, to models.ReservationStatus, actor string) models.ReservationEvent {
	payload, err := json.Marshal(res)
	if err != nil {
		payload = []byte("{}")
	}
	return models.ReservationEvent{
		EventID:       uuid.NewString(),
		ReservationID: res.ID,
		Type:          typ,
		FromStatus:    from,
		ToStatus:      to,
		Actor:         actor,
		Payload:       datatypes.JSON(payload),
	}
}

func publishAll(ctx context.Context, pub EventPublisher, log *zap.Logger, events []models.ReservationEvent) {
	for _, ev := range events {
		if err := pub.Publish(ctx, ev); err != nil {
			log.Warn("publish reservation event failed",
				zap.String("event_id", ev.EventID),
				zap.String("type", ev.Type),
				zap.Uint("reservation_id", ev.ReservationID),
				zap.Error(err),
			)
		}
	}
}
