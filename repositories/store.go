package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"hotel-reservations/models"
)

// Store groups the per-entity repositories over one *gorm.DB. A Store built
// inside Transaction shares the transaction with all of its repositories.
type Store struct {
	db *gorm.DB

	Rooms        *RoomRepository
	Customers    *CustomerRepository
	Reservations *ReservationRepository
	Events       *EventRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Rooms:        &RoomRepository{db: db},
		Customers:    &CustomerRepository{db: db},
		Reservations: &ReservationRepository{db: db},
		Events:       &EventRepository{db: db},
	}
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn against a Store bound to a single database
// transaction. Returning an error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// AutoMigrate creates or updates the schema, parents first.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Room{},
		&models.Customer{},
		&models.Reservation{},
		&models.ReservationEvent{},
	)
}

// likeEscaper escapes LIKE wildcards with '!'. A backslash escape would need
// different quoting on MySQL and Postgres; '!' is literal on every driver.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a case-folded "contains" pattern for use with
// "LOWER(col) LIKE ? ESCAPE '!'".
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

func activeStatusValues() []string {
	active := models.ActiveStatuses()
	out := make([]string, 0, len(active))
	for _, s := range active {
		out = append(out, string(s))
	}
	return out
}
