// services/customer_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"hotel-reservations/models"
	"hotel-reservations/repositories"
)

type CreateCustomerInput struct {
	Name     string
	Email    string
	Phone    string
	Username string
	Password string
}

// UpdateCustomerInput only carries the phone number; LockedFields names any
// of name, email or active_reservations the caller sent.
type UpdateCustomerInput struct {
	Phone        *string
	LockedFields []string
}

type CustomerService struct {
	store *repositories.Store
	locks *Locker
	log   *zap.Logger
}

func NewCustomerService(store *repositories.Store, locks *Locker, log *zap.Logger) *CustomerService {
	if locks == nil {
		locks = NewLocker()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CustomerService{store: store, locks: locks, log: log}
}

func (s *CustomerService) List(ctx context.Context, f repositories.CustomerFilter) ([]models.Customer, error) {
	return s.store.Customers.List(ctx, f)
}

func (s *CustomerService) Get(ctx context.Context, id uint) (models.Customer, error) {
	c, err := s.store.Customers.FindByID(ctx, id)
	if err != nil {
		return c, lookupErr("customer", id, err)
	}
	return c, nil
}

// Create registers a customer with a bcrypt password hash and no active
// reservations.
func (s *CustomerService) Create(ctx context.Context, in CreateCustomerInput) (models.Customer, error) {
	email := strings.TrimSpace(in.Email)
	taken, err := s.store.Customers.EmailTaken(ctx, email)
	if err != nil {
		return models.Customer{}, err
	}
	if taken {
		return models.Customer{}, fmt.Errorf("the email has already been registered: %w", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Customer{}, fmt.Errorf("hash password: %w", err)
	}

	customer := models.Customer{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: string(hash),
	}
	if err := s.store.Customers.Create(ctx, &customer); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.Customer{}, fmt.Errorf("the email or username has already been registered: %w", ErrConflict)
		}
		return models.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

// Update changes the phone number.
func (s *CustomerService) Update(ctx context.Context, id uint, in UpdateCustomerInput) (models.Customer, error) {
	release := s.locks.Acquire(customerKey(id))
	defer release()

	var updated models.Customer
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		c, err := tx.Customers.FindForUpdate(ctx, id)
		if err != nil {
			return lookupErr("customer", id, err)
		}
		if len(in.LockedFields) > 0 {
			return &LockedFieldsError{Fields: in.LockedFields}
		}
		if in.Phone == nil {
			return fmt.Errorf("phone is missing: %w", ErrNoOp)
		}
		phone := strings.TrimSpace(*in.Phone)
		if phone == c.Phone {
			return fmt.Errorf("phone is unchanged: %w", ErrNoOp)
		}
		if err := tx.Customers.Update(ctx, id, map[string]interface{}{"phone": phone}); err != nil {
			return fmt.Errorf("update customer %d: %w", id, err)
		}
		updated, err = tx.Customers.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return models.Customer{}, err
	}
	return updated, nil
}

// Delete removes a customer with no active reservations.
func (s *CustomerService) Delete(ctx context.Context, id uint) (models.Customer, error) {
	release := s.locks.Acquire(customerKey(id))
	defer release()

	var deleted models.Customer
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		c, err := tx.Customers.FindForUpdate(ctx, id)
		if err != nil {
			return lookupErr("customer", id, err)
		}
		if c.ActiveReservations > 0 {
			return fmt.Errorf("customer %d has %d active reservations: %w", id, c.ActiveReservations, ErrConflict)
		}
		if err := tx.Customers.Delete(ctx, id); err != nil {
			return lookupErr("customer", id, err)
		}
		deleted = c
		return nil
	})
	if err != nil {
		return models.Customer{}, err
	}
	s.log.Info("customer deleted", zap.Uint("customer_id", id))
	return deleted, nil
}
