package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-reservations/models"
)

// ReservationFilter narrows List. All fields match exactly.
type ReservationFilter struct {
	CheckInDate  *time.Time
	CheckOutDate *time.Time
	CustomerID   *uint
	RoomID       *uint
}

type ReservationRepository struct {
	db *gorm.DB
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uint) (models.Reservation, error) {
	var res models.Reservation
	if err := r.db.WithContext(ctx).First(&res, id).Error; err != nil {
		return res, translate(err)
	}
	return res, nil
}

func (r *ReservationRepository) FindForUpdate(ctx context.Context, id uint) (models.Reservation, error) {
	var res models.Reservation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&res, id).Error
	if err != nil {
		return res, translate(err)
	}
	return res, nil
}

func (r *ReservationRepository) List(ctx context.Context, f ReservationFilter) ([]models.Reservation, error) {
	q := r.db.WithContext(ctx).Model(&models.Reservation{})
	if f.CheckInDate != nil {
		q = q.Where("check_in_date = ?", datatypes.Date(*f.CheckInDate))
	}
	if f.CheckOutDate != nil {
		q = q.Where("check_out_date = ?", datatypes.Date(*f.CheckOutDate))
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.RoomID != nil {
		q = q.Where("room_id = ?", *f.RoomID)
	}

	var out []models.Reservation
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return out, nil
}

// ListActiveByRoom returns the confirmed and checked-in reservations holding roomID.
func (r *ReservationRepository) ListActiveByRoom(ctx context.Context, roomID uint) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND status IN ?", roomID, activeStatusValues()).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list active reservations for room %d: %w", roomID, err)
	}
	return out, nil
}

func (r *ReservationRepository) CountActiveByRoom(ctx context.Context, roomID uint) (int64, error) {
	return r.countActive(ctx, "room_id", roomID)
}

func (r *ReservationRepository) CountActiveByCustomer(ctx context.Context, customerID uint) (int64, error) {
	return r.countActive(ctx, "customer_id", customerID)
}

// CountOtherActiveByRoom counts active reservations on roomID other than excludeID.
func (r *ReservationRepository) CountOtherActiveByRoom(ctx context.Context, roomID, excludeID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("room_id = ? AND id <> ? AND status IN ?", roomID, excludeID, activeStatusValues()).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count other active reservations for room %d: %w", roomID, err)
	}
	return n, nil
}

func (r *ReservationRepository) countActive(ctx context.Context, column string, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where(column+" = ? AND status IN ?", id, activeStatusValues()).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count active reservations by %s: %w", column, err)
	}
	return n, nil
}

func (r *ReservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	return translate(r.db.WithContext(ctx).Create(res).Error)
}

func (r *ReservationRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Updates(fields).Error
	return translate(err)
}

func (r *ReservationRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Reservation{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
