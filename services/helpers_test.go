package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-reservations/models"
	"hotel-reservations/repositories"
)

// testNow is "today" for every reservation test.
var testNow = time.Date(2024, 10, 1, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *repositories.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hotel.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repositories.AutoMigrate(db))
	return repositories.NewStore(db)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ReservationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev models.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	store        *repositories.Store
	pub          *recordingPublisher
	reservations *ReservationService
	rooms        *RoomService
	customers    *CustomerService
	seq          int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newTestStore(t)
	pub := &recordingPublisher{}
	locks := NewLocker()
	f := &fixture{
		store:        store,
		pub:          pub,
		reservations: NewReservationService(store, locks, pub, nil),
		rooms:        NewRoomService(store, locks, pub, nil),
		customers:    NewCustomerService(store, locks, nil),
	}
	f.reservations.SetClock(func() time.Time { return testNow })
	return f
}

func (f *fixture) room(t *testing.T, number int, price int64) models.Room {
	t.Helper()
	room := models.Room{
		Number:        number,
		Type:          models.RoomTypeDouble,
		Description:   fmt.Sprintf("room %d", number),
		PricePerNight: decimal.NewFromInt(price),
		Availability:  true,
	}
	require.NoError(t, f.store.Rooms.Create(context.Background(), &room))
	return room
}

func (f *fixture) customer(t *testing.T, name string) models.Customer {
	t.Helper()
	f.seq++
	c := models.Customer{
		Name:     name,
		Email:    fmt.Sprintf("guest%d@example.com", f.seq),
		Phone:    "5550000000",
		Username: fmt.Sprintf("guest%d", f.seq),
	}
	require.NoError(t, f.store.Customers.Create(context.Background(), &c))
	return c
}

func (f *fixture) reserve(t *testing.T, customerID, roomID uint, in, out string) models.Reservation {
	t.Helper()
	res, err := f.reservations.Create(context.Background(), CreateReservationInput{
		CustomerID:   customerID,
		RoomID:       roomID,
		CheckInDate:  day(in),
		CheckOutDate: day(out),
		Actor:        "tester",
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) reloadRoom(t *testing.T, id uint) models.Room {
	t.Helper()
	r, err := f.store.Rooms.FindByID(context.Background(), id)
	require.NoError(t, err)
	return r
}

func (f *fixture) reloadCustomer(t *testing.T, id uint) models.Customer {
	t.Helper()
	c, err := f.store.Customers.FindByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (f *fixture) reservationCount(t *testing.T) int {
	t.Helper()
	all, err := f.store.Reservations.List(context.Background(), repositories.ReservationFilter{})
	require.NoError(t, err)
	return len(all)
}

// requireConsistent checks the room and customer invariants against the
// reservations actually stored.
func (f *fixture) requireConsistent(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	rooms, err := f.store.Rooms.List(ctx, repositories.RoomFilter{})
	require.NoError(t, err)
	for _, r := range rooms {
		n, err := f.store.Reservations.CountActiveByRoom(ctx, r.ID)
		require.NoError(t, err)
		require.LessOrEqual(t, n, int64(1), "room %d held by more than one reservation", r.Number)
		require.Equal(t, n == 0, r.Availability, "room %d availability out of sync", r.Number)
	}

	customers, err := f.store.Customers.List(ctx, repositories.CustomerFilter{})
	require.NoError(t, err)
	for _, c := range customers {
		n, err := f.store.Reservations.CountActiveByCustomer(ctx, c.ID)
		require.NoError(t, err)
		require.Equal(t, int(n), c.ActiveReservations, "customer %d counter out of sync", c.ID)
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }
