package services

import (
	"context"
	"errors"
	"fmt"

	"hotel-reservations/models"
	"hotel-reservations/repositories"
)

// CustomerCounter maintains Customer.ActiveReservations inside a transaction.
type CustomerCounter struct {
	customers *repositories.CustomerRepository
}

func NewCustomerCounter(store *repositories.Store) *CustomerCounter {
	return &CustomerCounter{customers: store.Customers}
}

// Increment adds one active reservation. It refuses to go above
// models.MaxActiveReservations, but callers are expected to have checked the
// cap before the first write of the operation.
func (c *CustomerCounter) Increment(ctx context.Context, customerID uint) error {
	customer, err := c.load(ctx, customerID)
	if err != nil {
		return err
	}
	next := customer.ActiveReservations + 1
	if next > models.MaxActiveReservations {
		return &CapacityError{CustomerID: customerID, Active: customer.ActiveReservations}
	}
	return c.store(ctx, customerID, next)
}

// Decrement removes one active reservation, never going below zero.
func (c *CustomerCounter) Decrement(ctx context.Context, customerID uint) error {
	customer, err := c.load(ctx, customerID)
	if err != nil {
		return err
	}
	next := customer.ActiveReservations - 1
	if next < 0 {
		next = 0
	}
	return c.store(ctx, customerID, next)
}

func (c *CustomerCounter) load(ctx context.Context, customerID uint) (models.Customer, error) {
	customer, err := c.customers.FindForUpdate(ctx, customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return customer, notFound("customer", customerID)
		}
		return customer, fmt.Errorf("load customer %d: %w", customerID, err)
	}
	return customer, nil
}

func (c *CustomerCounter) store(ctx context.Context, customerID uint, n int) error {
	err := c.customers.Update(ctx, customerID, map[string]interface{}{"active_reservations": n})
	if err != nil {
		return fmt.Errorf("set customer %d active_reservations=%d: %w", customerID, n, err)
	}
	return nil
}
