package repositories

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-reservations/models"
)

// CustomerFilter narrows List. Name and Email match as case-insensitive
// substrings, Phone matches exactly.
type CustomerFilter struct {
	Name  string
	Email string
	Phone string
}

type CustomerRepository struct {
	db *gorm.DB
}

func (r *CustomerRepository) FindByID(ctx context.Context, id uint) (models.Customer, error) {
	var c models.Customer
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return c, translate(err)
	}
	return c, nil
}

func (r *CustomerRepository) FindForUpdate(ctx context.Context, id uint) (models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, id).Error
	if err != nil {
		return c, translate(err)
	}
	return c, nil
}

func (r *CustomerRepository) FindByUsername(ctx context.Context, username string) (models.Customer, error) {
	var c models.Customer
	err := r.db.WithContext(ctx).
		Where("username = ?", strings.TrimSpace(username)).
		First(&c).Error
	if err != nil {
		return c, translate(err)
	}
	return c, nil
}

// EmailTaken reports whether another customer already uses email, ignoring case.
func (r *CustomerRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return n > 0, nil
}

func (r *CustomerRepository) List(ctx context.Context, f CustomerFilter) ([]models.Customer, error) {
	q := r.db.WithContext(ctx).Model(&models.Customer{})
	if n := strings.TrimSpace(f.Name); n != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '!'", containsPattern(n))
	}
	if e := strings.TrimSpace(f.Email); e != "" {
		q = q.Where("LOWER(email) LIKE ? ESCAPE '!'", containsPattern(e))
	}
	if p := strings.TrimSpace(f.Phone); p != "" {
		q = q.Where("phone = ?", p)
	}

	var customers []models.Customer
	if err := q.Order("id ASC").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CustomerRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(fields).Error
	return translate(err)
}

func (r *CustomerRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Customer{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
