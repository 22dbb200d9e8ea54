package persistence

import (
	"context"
	"errors"

	"github.com/etiqueta/backend/internal/domain/employee"
	"github.com/etiqueta/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormEmployeeRepository implements employee.Repository using GORM
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository creates a new GormEmployeeRepository
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

// FindActiveByCode finds an active employee by exact code
func (r *GormEmployeeRepository) FindActiveByCode(ctx context.Context, code string) (*employee.Employee, error) {
	var e employee.Employee
	if err := r.db.WithContext(ctx).
		Where("code = ? AND active = ?", employee.NormalizeCode(code), true).
		First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// FindByCode finds an employee by exact code, active or not
func (r *GormEmployeeRepository) FindByCode(ctx context.Context, code string) (*employee.Employee, error) {
	var e employee.Employee
	if err := r.db.WithContext(ctx).
		Where("code = ?", employee.NormalizeCode(code)).
		First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Save creates or updates an employee
func (r *GormEmployeeRepository) Save(ctx context.Context, e *employee.Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

var _ employee.Repository = (*GormEmployeeRepository)(nil)
