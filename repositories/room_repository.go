package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-reservations/models"
)

// RoomFilter narrows List. Zero values are ignored.
type RoomFilter struct {
	Type         string
	Availability *bool
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Number       *int
	Description  string // case-insensitive substring
}

type RoomRepository struct {
	db *gorm.DB
}

func (r *RoomRepository) FindByID(ctx context.Context, id uint) (models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return room, translate(err)
	}
	return room, nil
}

// FindForUpdate loads the room with a row lock held until the surrounding
// transaction ends. SQLite ignores the locking clause.
func (r *RoomRepository) FindForUpdate(ctx context.Context, id uint) (models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&room, id).Error
	if err != nil {
		return room, translate(err)
	}
	return room, nil
}

func (r *RoomRepository) List(ctx context.Context, f RoomFilter) ([]models.Room, error) {
	q := r.db.WithContext(ctx).Model(&models.Room{})
	if f.Type != "" {
		q = q.Where("type = ?", strings.ToLower(f.Type))
	}
	if f.Availability != nil {
		q = q.Where("availability = ?", *f.Availability)
	}
	if f.MinPrice != nil {
		q = q.Where("price_per_night >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price_per_night <= ?", *f.MaxPrice)
	}
	if f.Number != nil {
		q = q.Where("number = ?", *f.Number)
	}
	if d := strings.TrimSpace(f.Description); d != "" {
		q = q.Where("LOWER(description) LIKE ? ESCAPE '!'", containsPattern(d))
	}

	var rooms []models.Room
	if err := q.Order("number ASC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	return translate(r.db.WithContext(ctx).Create(room).Error)
}

// Update writes the given columns. Callers pass a map so that false and zero
// values are written rather than skipped.
func (r *RoomRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	err := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ?", id).
		Updates(fields).Error
	return translate(err)
}

func (r *RoomRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Room{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
