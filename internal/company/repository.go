// File: internal/company/repository.go
package company

import (
	"context"
	"errors"
	"strings"

	"mybench_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for company data operations.
type Repository interface {
	Create(ctx context.Context, company *Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	FindBySlug(ctx context.Context, slug string) (*Company, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, company *Company) error
	List(ctx context.Context, status string, page, pageSize int) ([]Company, int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM company repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, company *Company) error {
	company.Slug = strings.ToLower(strings.TrimSpace(company.Slug))
	err := r.db.WithContext(ctx).Create(company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique constraint") {
			return common.ErrConflict.WithDetails("Company with this slug already exists.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	var company Company
	err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Company not found.")
		}
		return nil, err
	}
	return &company, nil
}

func (r *gormRepository) FindBySlug(ctx context.Context, slug string) (*Company, error) {
	var company Company
	err := r.db.WithContext(ctx).First(&company, "slug = ?", strings.ToLower(strings.TrimSpace(slug))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Company not found.")
		}
		return nil, err
	}
	return &company, nil
}

func (r *gormRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Company{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) Update(ctx context.Context, company *Company) error {
	err := r.db.WithContext(ctx).Save(company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique constraint") {
			return common.ErrConflict.WithDetails("Company with this slug already exists.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) List(ctx context.Context, status string, page, pageSize int) ([]Company, int64, error) {
	query := r.db.WithContext(ctx).Model(&Company{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var companies []Company
	err := query.Order("name ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&companies).Error
	if err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}
