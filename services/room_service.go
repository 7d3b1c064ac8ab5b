package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hotel-reservations/models"
	"hotel-reservations/repositories"
)

type CreateRoomInput struct {
	Number        int
	Type          string
	Description   string
	PricePerNight decimal.Decimal
}

// UpdateRoomInput holds the two editable room fields. LockedFields names any
// of number, description or availability the caller sent.
type UpdateRoomInput struct {
	Type          *string
	PricePerNight *decimal.Decimal
	LockedFields  []string
}

// RoomService manages rooms. Availability is never written here: it belongs
// to the reservation lifecycle.
type RoomService struct {
	store     *repositories.Store
	locks     *Locker
	publisher EventPublisher
	log       *zap.Logger
}

func NewRoomService(store *repositories.Store, locks *Locker, publisher EventPublisher, log *zap.Logger) *RoomService {
	if locks == nil {
		locks = NewLocker()
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RoomService{store: store, locks: locks, publisher: publisher, log: log}
}

func (s *RoomService) List(ctx context.Context, f repositories.RoomFilter) ([]models.Room, error) {
	if f.Type != "" {
		t, ok := models.NormalizeRoomType(f.Type)
		if !ok {
			return nil, &ValidationError{Field: "type", Message: "invalid room type"}
		}
		f.Type = t
	}
	return s.store.Rooms.List(ctx, f)
}

func (s *RoomService) Get(ctx context.Context, id uint) (models.Room, error) {
	room, err := s.store.Rooms.FindByID(ctx, id)
	if err != nil {
		return room, lookupErr("room", id, err)
	}
	return room, nil
}

// Create registers a new room. New rooms are always available.
func (s *RoomService) Create(ctx context.Context, in CreateRoomInput) (models.Room, error) {
	if in.Number <= 0 {
		return models.Room{}, &ValidationError{Field: "number", Message: "must be a positive integer"}
	}
	roomType, ok := models.NormalizeRoomType(in.Type)
	if !ok {
		return models.Room{}, &ValidationError{Field: "type", Message: "invalid room type"}
	}
	if !models.PriceInRange(in.PricePerNight) {
		return models.Room{}, &ValidationError{Field: "price_per_night", Message: "must be between 50 and 1000"}
	}

	room := models.Room{
		Number:        in.Number,
		Type:          roomType,
		Description:   strings.TrimSpace(in.Description),
		PricePerNight: in.PricePerNight.Round(2),
		Availability:  true,
	}
	if err := s.store.Rooms.Create(ctx, &room); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.Room{}, fmt.Errorf("room number %d is already registered: %w", in.Number, ErrConflict)
		}
		return models.Room{}, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

// Update changes the type and/or nightly rate. A new rate is applied to the
// total of every active reservation on the room in the same transaction.
func (s *RoomService) Update(ctx context.Context, id uint, in UpdateRoomInput) (models.Room, error) {
	release := s.locks.Acquire(roomKey(id))
	defer release()

	var (
		updated models.Room
		events  []models.ReservationEvent
	)
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		room, err := tx.Rooms.FindForUpdate(ctx, id)
		if err != nil {
			return lookupErr("room", id, err)
		}
		if len(in.LockedFields) > 0 {
			return &LockedFieldsError{Fields: in.LockedFields}
		}
		if in.Type == nil && in.PricePerNight == nil {
			return ErrNoOp
		}

		fields := map[string]interface{}{}
		if in.Type != nil {
			t, ok := models.NormalizeRoomType(*in.Type)
			if !ok {
				return &ValidationError{Field: "type", Message: "invalid room type"}
			}
			if t != room.Type {
				fields["type"] = t
			}
		}
		var repriced bool
		if in.PricePerNight != nil {
			price := in.PricePerNight.Round(2)
			if !models.PriceInRange(price) {
				return &ValidationError{Field: "price_per_night", Message: "must be between 50 and 1000"}
			}
			if !price.Equal(room.PricePerNight) {
				fields["price_per_night"] = price
				repriced = true
			}
		}
		if len(fields) == 0 {
			return fmt.Errorf("room %d already has these values: %w", room.Number, ErrNoOp)
		}

		if err := tx.Rooms.Update(ctx, id, fields); err != nil {
			return fmt.Errorf("update room %d: %w", id, err)
		}
		if updated, err = tx.Rooms.FindByID(ctx, id); err != nil {
			return fmt.Errorf("reload room %d: %w", id, err)
		}
		if repriced {
			events, err = repriceActive(ctx, tx, updated)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Room{}, err
	}

	if len(events) > 0 {
		s.log.Info("room repriced",
			zap.Uint("room_id", updated.ID),
			zap.String("price_per_night", updated.PricePerNight.StringFixed(2)),
			zap.Int("reservations", len(events)),
		)
	}
	publishAll(ctx, s.publisher, s.log, events)
	return updated, nil
}

func repriceActive(ctx context.Context, tx *repositories.Store, room models.Room) ([]models.ReservationEvent, error) {
	active, err := tx.Reservations.ListActiveByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	events := make([]models.ReservationEvent, 0, len(active))
	for _, res := range active {
		res.TotalAmount = ComputeAmount(res.CheckIn(), res.CheckOut(), room.PricePerNight)
		if err := tx.Reservations.Update(ctx, res.ID, map[string]interface{}{"total_amount": res.TotalAmount}); err != nil {
			return nil, fmt.Errorf("reprice reservation %d: %w", res.ID, err)
		}
		ev := newEvent(models.EventRepriced, res, "", "", "")
		if err := tx.Events.Create(ctx, &ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// Delete removes a room that no active reservation holds.
func (s *RoomService) Delete(ctx context.Context, id uint) (models.Room, error) {
	release := s.locks.Acquire(roomKey(id))
	defer release()

	var deleted models.Room
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		room, err := tx.Rooms.FindForUpdate(ctx, id)
		if err != nil {
			return lookupErr("room", id, err)
		}
		n, err := tx.Reservations.CountActiveByRoom(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("room %d is held by an active reservation: %w", room.Number, ErrConflict)
		}
		if err := tx.Rooms.Delete(ctx, id); err != nil {
			return lookupErr("room", id, err)
		}
		deleted = room
		return nil
	})
	if err != nil {
		return models.Room{}, err
	}
	return deleted, nil
}
