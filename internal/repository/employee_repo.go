package repository

import (
	"context"

	"brewpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmployeeRepository is the data access contract for the employee directory.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type EmployeeRepository interface {
	Create(ctx context.Context, e *model.Employee) error
	FindByUsername(ctx context.Context, username string) (*model.Employee, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	List(ctx context.Context, includeInactive bool) ([]model.Employee, error)
	Update(ctx context.Context, e *model.Employee) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
}

type employeeRepo struct{ db *gorm.DB }

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository { return &employeeRepo{db: db} }

func (r *employeeRepo) Create(ctx context.Context, e *model.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *employeeRepo) FindByUsername(ctx context.Context, username string) (*model.Employee, error) {
	var e model.Employee
	// Accept login by username OR email (case-insensitive email match)
	err := r.db.WithContext(ctx).
		Where("(username = ? OR LOWER(email::text) = LOWER(?)) AND active = true", username, username).
		First(&e).Error
	return &e, err
}

func (r *employeeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	var e model.Employee
	err := r.db.WithContext(ctx).First(&e, id).Error
	return &e, err
}

func (r *employeeRepo) List(ctx context.Context, includeInactive bool) ([]model.Employee, error) {
	var employees []model.Employee
	q := r.db.WithContext(ctx)
	if !includeInactive {
		q = q.Where("active = true")
	}
	err := q.Order("username ASC").Find(&employees).Error
	return employees, err
}

func (r *employeeRepo) Update(ctx context.Context, e *model.Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *employeeRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Employee{}).Where("id = ?", id).Update("active", false).Error
}

func (r *employeeRepo) Reactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Employee{}).Where("id = ?", id).Update("active", true).Error
}
