package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hotel-reservations/repositories"
)

func newCustomerInput(email, username string) CreateCustomerInput {
	return CreateCustomerInput{
		Name:     "Ana Lopez",
		Email:    email,
		Phone:    "5551234567",
		Username: username,
		Password: "Secret123",
	}
}

func TestCustomerService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.customers.Create(ctx, newCustomerInput(" ana@example.com ", "ana"))
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", c.Email)
	assert.Zero(t, c.ActiveReservations)
	assert.NotEqual(t, "Secret123", c.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte("Secret123")))

	_, err = f.customers.Create(ctx, newCustomerInput("ANA@example.com", "ana2"))
	assert.ErrorIs(t, err, ErrConflict, "email check ignores case")

	_, err = f.customers.Create(ctx, newCustomerInput("other@example.com", "ana"))
	assert.ErrorIs(t, err, ErrConflict, "username is unique")
}

func TestCustomerService_UpdatePhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Ana Lopez")

	updated, err := f.customers.Update(ctx, c.ID, UpdateCustomerInput{Phone: ptr("5559876543")})
	require.NoError(t, err)
	assert.Equal(t, "5559876543", updated.Phone)
	assert.Equal(t, c.Email, updated.Email)

	_, err = f.customers.Update(ctx, c.ID, UpdateCustomerInput{Phone: ptr("5559876543")})
	assert.ErrorIs(t, err, ErrNoOp)

	_, err = f.customers.Update(ctx, c.ID, UpdateCustomerInput{})
	assert.ErrorIs(t, err, ErrNoOp)

	_, err = f.customers.Update(ctx, c.ID, UpdateCustomerInput{Phone: ptr("1"), LockedFields: []string{"active_reservations"}})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "5559876543", f.reloadCustomer(t, c.ID).Phone)

	_, err = f.customers.Update(ctx, 999, UpdateCustomerInput{Phone: ptr("1")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerService_DeleteGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.room(t, 101, 100)
	c := f.customer(t, "Ana Lopez")
	res := f.reserve(t, c.ID, room.ID, "2024-11-01", "2024-11-03")

	_, err := f.customers.Delete(ctx, c.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.reservations.Update(ctx, res.ID, UpdateReservationInput{Status: ptr("canceled")})
	require.NoError(t, err)

	deleted, err := f.customers.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, deleted.ID)

	_, err = f.customers.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerService_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.customer(t, "Ana Lopez")
	f.customer(t, "Ben Ortiz")
	f.customer(t, "Anabel Cruz")

	got, err := f.customers.List(ctx, repositories.CustomerFilter{Name: "ANA"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ana Lopez", got[0].Name)
	assert.Equal(t, "Anabel Cruz", got[1].Name)

	got, err = f.customers.List(ctx, repositories.CustomerFilter{Email: "guest2@"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ben Ortiz", got[0].Name)
}
