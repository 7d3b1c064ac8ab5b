package models

import (
	"fmt"
	"strings"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusConfirmed  ReservationStatus = "confirmed"
	StatusCheckedIn  ReservationStatus = "checked-in"
	StatusCheckedOut ReservationStatus = "checked-out"
	StatusCompleted  ReservationStatus = "completed"
	StatusCanceled   ReservationStatus = "canceled"
	StatusNoShow     ReservationStatus = "no-show"
)

// validTransitions is the reservation state machine. Moves between the two
// active statuses are allowed in either direction; terminal states have no
// way out.
var validTransitions = map[ReservationStatus][]ReservationStatus{
	StatusConfirmed:  {StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCompleted, StatusCanceled, StatusNoShow},
	StatusCheckedIn:  {StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCompleted, StatusCanceled, StatusNoShow},
	StatusCheckedOut: {},
	StatusCompleted:  {},
	StatusCanceled:   {},
	StatusNoShow:     {},
}

// IsValid returns true if the status is one of the six recognized values.
func (s ReservationStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// IsActive reports whether the status counts toward room occupancy and the
// customer's reservation cap.
func (s ReservationStatus) IsActive() bool {
	return s == StatusConfirmed || s == StatusCheckedIn
}

// IsTerminal returns true if no further edits are possible from this status.
func (s ReservationStatus) IsTerminal() bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return true
	}
	return len(allowed) == 0
}

// CanTransitionTo returns true if moving from s to target is allowed.
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s ReservationStatus) String() string { return string(s) }

// ParseReservationStatus converts user input (case-insensitive) to a status.
func ParseReservationStatus(raw string) (ReservationStatus, error) {
	s := ReservationStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("unknown reservation status %q", raw)
	}
	return s, nil
}

// ActiveStatuses lists the statuses that hold a room and count toward the cap.
func ActiveStatuses() []ReservationStatus {
	return []ReservationStatus{StatusConfirmed, StatusCheckedIn}
}
