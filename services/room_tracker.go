package services

import (
	"context"
	"errors"
	"fmt"

	"hotel-reservations/repositories"
)

// RoomTracker flips Room.Availability. It is bound to the Store of the
// transaction it runs in and only the reservation lifecycle calls it.
type RoomTracker struct {
	rooms *repositories.RoomRepository
}

func NewRoomTracker(store *repositories.Store) *RoomTracker {
	return &RoomTracker{rooms: store.Rooms}
}

// MarkOccupied sets availability=false.
func (t *RoomTracker) MarkOccupied(ctx context.Context, roomID uint) error {
	return t.set(ctx, roomID, false)
}

// MarkAvailable sets availability=true.
func (t *RoomTracker) MarkAvailable(ctx context.Context, roomID uint) error {
	return t.set(ctx, roomID, true)
}

func (t *RoomTracker) set(ctx context.Context, roomID uint, available bool) error {
	// load first: MySQL reports zero affected rows when the value is unchanged
	if _, err := t.rooms.FindForUpdate(ctx, roomID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("room", roomID)
		}
		return fmt.Errorf("load room %d: %w", roomID, err)
	}
	if err := t.rooms.Update(ctx, roomID, map[string]interface{}{"availability": available}); err != nil {
		return fmt.Errorf("set room %d availability=%t: %w", roomID, available, err)
	}
	return nil
}
