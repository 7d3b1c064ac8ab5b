package services

import (
	"errors"
	"fmt"
	"strings"

	"hotel-reservations/models"
)

// Sentinel errors. Match with errors.Is; the structured errors below unwrap
// to one of these.
var (
	ErrNotFound         = errors.New("not found")
	ErrRoomUnavailable  = errors.New("room is not available")
	ErrCapacityExceeded = errors.New("customer has reached the maximum number of active reservations")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrForbidden        = errors.New("field cannot be modified")
	ErrNoOp             = errors.New("nothing to update")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrImmutable        = errors.New("reservation can no longer be modified")
	ErrConflict         = errors.New("conflict")
	ErrInvalid          = errors.New("invalid input")
	ErrUnauthorized     = errors.New("invalid credentials")
)

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// CapacityError carries the customer that is at the cap.
type CapacityError struct {
	CustomerID uint
	Active     int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("customer %d already has %d active reservations (max %d)",
		e.CustomerID, e.Active, models.MaxActiveReservations)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// LockedFieldsError lists the fields a caller tried to set directly.
type LockedFieldsError struct {
	Fields []string
}

func (e *LockedFieldsError) Error() string {
	return fmt.Sprintf("cannot modify %s", strings.Join(e.Fields, ", "))
}

func (e *LockedFieldsError) Unwrap() error { return ErrForbidden }

// TransitionError describes a rejected status change.
type TransitionError struct {
	From models.ReservationStatus
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %s to %q", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidStatus }

// ValidationError wraps a bad input value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

func notFound(entity string, id uint) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the request clashes with current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrRoomUnavailable) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrImmutable)
}

// IsClientError returns true if the error is due to the caller's input or
// the current state of the data, and not an internal failure.
func IsClientError(err error) bool {
	return IsNotFound(err) ||
		IsConflict(err) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNoOp) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalid) ||
		errors.Is(err, ErrUnauthorized)
}
