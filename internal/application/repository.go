// File: internal/application/repository.go
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mybench_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for application data operations.
type Repository interface {
	Create(ctx context.Context, a *Application) error
	Update(ctx context.Context, a *Application) error
	FindByID(ctx context.Context, id uuid.UUID) (*Application, error)
	ListByJob(ctx context.Context, jobID uuid.UUID, status Status, page, pageSize int) ([]Application, int64, error)
	ListBySubmitter(ctx context.Context, userID uuid.UUID, status Status, page, pageSize int) ([]Application, int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM application repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func (r *gormRepository) Create(ctx context.Context, a *Application) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("This candidate has already applied to this job.")
		}
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (r *gormRepository) Update(ctx context.Context, a *Application) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("failed to update application %s: %w", a.ID, err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Application, error) {
	var a Application
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Application not found.")
		}
		return nil, err
	}
	return &a, nil
}

func (r *gormRepository) list(ctx context.Context, column string, id uuid.UUID, status Status, page, pageSize int) ([]Application, int64, error) {
	query := r.db.WithContext(ctx).Model(&Application{}).Where(column+" = ?", id)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []Application
	err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *gormRepository) ListByJob(ctx context.Context, jobID uuid.UUID, status Status, page, pageSize int) ([]Application, int64, error) {
	return r.list(ctx, "job_id", jobID, status, page, pageSize)
}

func (r *gormRepository) ListBySubmitter(ctx context.Context, userID uuid.UUID, status Status, page, pageSize int) ([]Application, int64, error) {
	return r.list(ctx, "submitted_by_user_id", userID, status, page, pageSize)
}
