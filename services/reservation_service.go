// services/reservation_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"hotel-reservations/models"
	"hotel-reservations/repositories"
	"hotel-reservations/utils"
)

// CreateReservationInput is a validated create request.
type CreateReservationInput struct {
	CustomerID   uint
	RoomID       uint
	CheckInDate  time.Time
	CheckOutDate time.Time
	Actor        string
}

// UpdateReservationInput carries the editable fields of an update. A nil
// pointer means the field was absent. LockedFields names any derived field
// (customer_name, room_number, check_in_date, total_amount) the caller sent.
type UpdateReservationInput struct {
	CustomerID   *uint
	RoomID       *uint
	CheckOutDate *time.Time
	Status       *string
	LockedFields []string
	Actor        string
}

func (in UpdateReservationInput) hasEditableField() bool {
	return in.CustomerID != nil || in.RoomID != nil || in.CheckOutDate != nil || in.Status != nil
}

// sideEffect is one write to a linked room or customer. Effects of an
// operation run in order inside the operation's transaction.
type sideEffect struct {
	name string
	run  func(ctx context.Context, tx *repositories.Store) error
}

func markOccupied(roomID uint) sideEffect {
	return sideEffect{
		name: fmt.Sprintf("mark room %d occupied", roomID),
		run: func(ctx context.Context, tx *repositories.Store) error {
			return NewRoomTracker(tx).MarkOccupied(ctx, roomID)
		},
	}
}

func markAvailable(roomID uint) sideEffect {
	return sideEffect{
		name: fmt.Sprintf("mark room %d available", roomID),
		run: func(ctx context.Context, tx *repositories.Store) error {
			return NewRoomTracker(tx).MarkAvailable(ctx, roomID)
		},
	}
}

func incrementCustomer(customerID uint) sideEffect {
	return sideEffect{
		name: fmt.Sprintf("increment customer %d", customerID),
		run: func(ctx context.Context, tx *repositories.Store) error {
			return NewCustomerCounter(tx).Increment(ctx, customerID)
		},
	}
}

func decrementCustomer(customerID uint) sideEffect {
	return sideEffect{
		name: fmt.Sprintf("decrement customer %d", customerID),
		run: func(ctx context.Context, tx *repositories.Store) error {
			return NewCustomerCounter(tx).Decrement(ctx, customerID)
		},
	}
}

// closeEffects are applied when a reservation enters a terminal status.
// customerID is the customer currently counting the reservation.
func closeEffects(customerID, roomID uint) []sideEffect {
	return []sideEffect{decrementCustomer(customerID), markAvailable(roomID)}
}

func applyEffects(ctx context.Context, tx *repositories.Store, effects []sideEffect) error {
	for _, e := range effects {
		if err := e.run(ctx, tx); err != nil {
			return fmt.Errorf("%s: %w", e.name, err)
		}
	}
	return nil
}

// ReservationService is the reservation lifecycle engine. Every mutating call
// runs in a single transaction and holds in-process locks on the rooms and
// customers it touches.
type ReservationService struct {
	store     *repositories.Store
	locks     *Locker
	publisher EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

func NewReservationService(store *repositories.Store, locks *Locker, publisher EventPublisher, log *zap.Logger) *ReservationService {
	if locks == nil {
		locks = NewLocker()
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReservationService{
		store:     store,
		locks:     locks,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// SetClock replaces the source of "today" used for date validation.
func (s *ReservationService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *ReservationService) today() time.Time {
	return utils.TruncateDate(s.now())
}

func (s *ReservationService) Get(ctx context.Context, id uint) (models.Reservation, error) {
	res, err := s.store.Reservations.FindByID(ctx, id)
	if err != nil {
		return res, lookupErr("reservation", id, err)
	}
	return res, nil
}

func (s *ReservationService) List(ctx context.Context, f repositories.ReservationFilter) ([]models.Reservation, error) {
	return s.store.Reservations.List(ctx, f)
}

// Events returns the lifecycle history of a reservation, including one that
// has since been deleted.
func (s *ReservationService) Events(ctx context.Context, id uint) ([]models.ReservationEvent, error) {
	events, err := s.store.Events.ListByReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// Create opens a confirmed reservation, occupies the room and counts it
// against the customer.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (models.Reservation, error) {
	checkIn := utils.TruncateDate(in.CheckInDate)
	checkOut := utils.TruncateDate(in.CheckOutDate)

	release := s.locks.Acquire(roomKey(in.RoomID), customerKey(in.CustomerID))
	defer release()

	var (
		created models.Reservation
		events  []models.ReservationEvent
	)
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		customer, err := tx.Customers.FindForUpdate(ctx, in.CustomerID)
		if err != nil {
			return lookupErr("customer", in.CustomerID, err)
		}
		room, err := tx.Rooms.FindForUpdate(ctx, in.RoomID)
		if err != nil {
			return lookupErr("room", in.RoomID, err)
		}
		if !room.Availability {
			return fmt.Errorf("room %d: %w", room.Number, ErrRoomUnavailable)
		}
		if customer.ActiveReservations >= models.MaxActiveReservations {
			return &CapacityError{CustomerID: customer.ID, Active: customer.ActiveReservations}
		}
		if err := s.validateStay(checkIn, checkOut); err != nil {
			return err
		}

		res := models.Reservation{
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			RoomID:       room.ID,
			RoomNumber:   room.Number,
			CheckInDate:  datatypes.Date(checkIn),
			CheckOutDate: datatypes.Date(checkOut),
			TotalAmount:  ComputeAmount(checkIn, checkOut, room.PricePerNight),
			Status:       models.StatusConfirmed,
		}
		if err := tx.Reservations.Create(ctx, &res); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}

		effects := []sideEffect{markOccupied(room.ID), incrementCustomer(customer.ID)}
		if err := applyEffects(ctx, tx, effects); err != nil {
			return err
		}

		ev := newEvent(models.EventCreated, res, "", res.Status, in.Actor)
		if err := tx.Events.Create(ctx, &ev); err != nil {
			return err
		}
		events = append(events, ev)
		created = res
		return nil
	})
	if err != nil {
		return models.Reservation{}, err
	}

	s.log.Info("reservation created",
		zap.Uint("reservation_id", created.ID),
		zap.Uint("room_id", created.RoomID),
		zap.Uint("customer_id", created.CustomerID),
		zap.String("total_amount", created.TotalAmount.StringFixed(2)),
	)
	publishAll(ctx, s.publisher, s.log, events)
	return created, nil
}

// Update applies a partial edit. Checks run in a fixed order: existence,
// terminal status, locked fields, empty request, then customer, room,
// check-out date and status, each possibly adding side effects.
func (s *ReservationService) Update(ctx context.Context, id uint, in UpdateReservationInput) (models.Reservation, error) {
	releaseRes := s.locks.Acquire(reservationKey(id))
	defer releaseRes()

	// room_id and customer_id only change under the reservation lock, so the
	// keys read here stay valid for the whole operation.
	current, err := s.store.Reservations.FindByID(ctx, id)
	if err != nil {
		return models.Reservation{}, lookupErr("reservation", id, err)
	}
	keys := []string{roomKey(current.RoomID), customerKey(current.CustomerID)}
	if in.RoomID != nil {
		keys = append(keys, roomKey(*in.RoomID))
	}
	if in.CustomerID != nil {
		keys = append(keys, customerKey(*in.CustomerID))
	}
	release := s.locks.Acquire(keys...)
	defer release()

	var (
		updated models.Reservation
		events  []models.ReservationEvent
	)
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		res, err := tx.Reservations.FindForUpdate(ctx, id)
		if err != nil {
			return lookupErr("reservation", id, err)
		}
		if res.Status.IsTerminal() {
			return fmt.Errorf("reservation %d is %s: %w", id, res.Status, ErrImmutable)
		}
		if len(in.LockedFields) > 0 {
			return &LockedFieldsError{Fields: in.LockedFields}
		}
		if !in.hasEditableField() {
			return ErrNoOp
		}

		merged := res
		fields := map[string]interface{}{}
		var effects []sideEffect

		// closing in the same request means the count never reaches a new customer
		var closing bool
		if in.Status != nil {
			if target, err := models.ParseReservationStatus(*in.Status); err == nil && res.Status.CanTransitionTo(target) {
				closing = target.IsTerminal()
			}
		}
		counted := res.CustomerID

		if in.CustomerID != nil {
			customer, err := tx.Customers.FindForUpdate(ctx, *in.CustomerID)
			if err != nil {
				return lookupErr("customer", *in.CustomerID, err)
			}
			if customer.Name != merged.CustomerName {
				merged.CustomerName = customer.Name
				fields["customer_name"] = customer.Name
			}
			if customer.ID != res.CustomerID {
				if !closing {
					// the reservation stays active, so it moves between counters
					if customer.ActiveReservations >= models.MaxActiveReservations {
						return &CapacityError{CustomerID: customer.ID, Active: customer.ActiveReservations}
					}
					effects = append(effects, decrementCustomer(res.CustomerID), incrementCustomer(customer.ID))
					counted = customer.ID
				}
				merged.CustomerID = customer.ID
				fields["customer_id"] = customer.ID
			}
		}

		room, err := tx.Rooms.FindForUpdate(ctx, res.RoomID)
		if err != nil {
			return lookupErr("room", res.RoomID, err)
		}
		if in.RoomID != nil && *in.RoomID != res.RoomID {
			next, err := tx.Rooms.FindForUpdate(ctx, *in.RoomID)
			if err != nil {
				return lookupErr("room", *in.RoomID, err)
			}
			if !next.Availability {
				return fmt.Errorf("room %d: %w", next.Number, ErrRoomUnavailable)
			}
			room = next
			merged.RoomID = room.ID
			merged.RoomNumber = room.Number
			merged.TotalAmount = ComputeAmount(merged.CheckIn(), merged.CheckOut(), room.PricePerNight)
			fields["room_id"] = room.ID
			fields["room_number"] = room.Number
			fields["total_amount"] = merged.TotalAmount
			effects = append(effects, markOccupied(room.ID), markAvailable(res.RoomID))
		} else if in.RoomID != nil && room.Number != merged.RoomNumber {
			merged.RoomNumber = room.Number
			fields["room_number"] = room.Number
		}

		if in.CheckOutDate != nil {
			checkOut := utils.TruncateDate(*in.CheckOutDate)
			if !checkOut.After(merged.CheckIn()) {
				return fmt.Errorf("check-out %s must be after check-in %s: %w",
					checkOut.Format(utils.DateLayout), merged.CheckIn().Format(utils.DateLayout), ErrInvalidDateRange)
			}
			if checkOut.Equal(utils.TruncateDate(merged.CheckOut())) {
				return fmt.Errorf("check-out is already %s: %w", checkOut.Format(utils.DateLayout), ErrInvalidDateRange)
			}
			merged.CheckOutDate = datatypes.Date(checkOut)
			merged.TotalAmount = ComputeAmount(merged.CheckIn(), checkOut, room.PricePerNight)
			fields["check_out_date"] = merged.CheckOutDate
			fields["total_amount"] = merged.TotalAmount
		}

		var statusChanged bool
		if in.Status != nil {
			target, err := models.ParseReservationStatus(*in.Status)
			if err != nil || !res.Status.CanTransitionTo(target) {
				return &TransitionError{From: res.Status, To: *in.Status}
			}
			if target != res.Status {
				merged.Status = target
				fields["status"] = string(target)
				statusChanged = true
				if target.IsTerminal() {
					effects = append(effects, closeEffects(counted, merged.RoomID)...)
				}
			}
		}

		if err := applyEffects(ctx, tx, effects); err != nil {
			return err
		}
		if len(fields) == 0 {
			updated = res
			return nil
		}
		if err := tx.Reservations.Update(ctx, id, fields); err != nil {
			return fmt.Errorf("update reservation %d: %w", id, err)
		}

		updated, err = tx.Reservations.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("reload reservation %d: %w", id, err)
		}
		if len(fields) > 1 || !statusChanged {
			ev := newEvent(models.EventUpdated, updated, "", "", in.Actor)
			if err := tx.Events.Create(ctx, &ev); err != nil {
				return err
			}
			events = append(events, ev)
		}
		if statusChanged {
			ev := newEvent(models.EventStatusChanged, updated, res.Status, updated.Status, in.Actor)
			if err := tx.Events.Create(ctx, &ev); err != nil {
				return err
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return models.Reservation{}, err
	}

	publishAll(ctx, s.publisher, s.log, events)
	return updated, nil
}

// Delete removes a reservation and reverses its side effects. The room is
// released unless another active reservation already holds it again; the
// customer is only decremented if the reservation was still active.
func (s *ReservationService) Delete(ctx context.Context, id uint, actor string) (models.Reservation, error) {
	releaseRes := s.locks.Acquire(reservationKey(id))
	defer releaseRes()

	current, err := s.store.Reservations.FindByID(ctx, id)
	if err != nil {
		return models.Reservation{}, lookupErr("reservation", id, err)
	}
	release := s.locks.Acquire(roomKey(current.RoomID), customerKey(current.CustomerID))
	defer release()

	var (
		deleted models.Reservation
		events  []models.ReservationEvent
	)
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		res, err := tx.Reservations.FindForUpdate(ctx, id)
		if err != nil {
			return lookupErr("reservation", id, err)
		}

		others, err := tx.Reservations.CountOtherActiveByRoom(ctx, res.RoomID, res.ID)
		if err != nil {
			return err
		}
		var effects []sideEffect
		if others == 0 {
			effects = append(effects, markAvailable(res.RoomID))
		}
		if res.Status.IsActive() {
			effects = append(effects, decrementCustomer(res.CustomerID))
		}
		if err := applyEffects(ctx, tx, effects); err != nil {
			// a closed reservation may outlive its room
			if !(IsNotFound(err) && res.Status.IsTerminal()) {
				return err
			}
		}

		if err := tx.Reservations.Delete(ctx, id); err != nil {
			return lookupErr("reservation", id, err)
		}
		ev := newEvent(models.EventDeleted, res, res.Status, "", actor)
		if err := tx.Events.Create(ctx, &ev); err != nil {
			return err
		}
		events = append(events, ev)
		deleted = res
		return nil
	})
	if err != nil {
		return models.Reservation{}, err
	}

	s.log.Info("reservation deleted", zap.Uint("reservation_id", id), zap.String("status", deleted.Status.String()))
	publishAll(ctx, s.publisher, s.log, events)
	return deleted, nil
}

// validateStay rejects empty or reversed stays and stays starting before today.
func (s *ReservationService) validateStay(checkIn, checkOut time.Time) error {
	if !checkOut.After(checkIn) {
		return fmt.Errorf("check-out %s must be after check-in %s: %w",
			checkOut.Format(utils.DateLayout), checkIn.Format(utils.DateLayout), ErrInvalidDateRange)
	}
	if checkIn.Before(s.today()) {
		return fmt.Errorf("check-in %s is in the past: %w", checkIn.Format(utils.DateLayout), ErrInvalidDateRange)
	}
	return nil
}

// lookupErr turns a repository miss into a NotFoundError and wraps anything else.
func lookupErr(entity string, id uint, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(entity, id)
	}
	return fmt.Errorf("load %s %d: %w", entity, id, err)
}
