// File: internal/job/repository.go
package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mybench_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows job listings. The service derives it from the viewer.
type ListFilter struct {
	// Audiences limits visibility values; nil means any.
	Audiences []Visibility
	// MemberOf is the viewer's company; its jobs bypass the audience check.
	MemberOf *uuid.UUID
	// OpenOnly hides closed and expired jobs. IncludeClosedForMember relaxes it for MemberOf.
	OpenOnly               bool
	IncludeClosedForMember bool
	Now                    time.Time

	CompanyID      *uuid.UUID
	Search         string
	Location       string
	EmploymentType string
}

// Repository defines the interface for job data operations.
type Repository interface {
	Create(ctx context.Context, j *Job) error
	Update(ctx context.Context, j *Job) error
	FindByID(ctx context.Context, id uuid.UUID) (*Job, error)
	List(ctx context.Context, filter ListFilter, page, pageSize int) ([]Job, int64, error)
	ExpireBefore(ctx context.Context, now time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM job repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, j *Job) error {
	if err := r.db.WithContext(ctx).Create(j).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *gormRepository) Update(ctx context.Context, j *Job) error {
	if err := r.db.WithContext(ctx).Save(j).Error; err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	var j Job
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Job not found.")
		}
		return nil, err
	}
	return &j, nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter, page, pageSize int) ([]Job, int64, error) {
	query := r.db.WithContext(ctx).Model(&Job{})

	if filter.Audiences != nil {
		if filter.MemberOf != nil {
			query = query.Where("(visibility IN ? OR company_id = ?)", filter.Audiences, *filter.MemberOf)
		} else {
			query = query.Where("visibility IN ?", filter.Audiences)
		}
	}

	if filter.OpenOnly {
		if filter.IncludeClosedForMember && filter.MemberOf != nil {
			query = query.Where("((status = ? AND expires_at > ?) OR company_id = ?)", StatusOpen, filter.Now, *filter.MemberOf)
		} else {
			query = query.Where("status = ? AND expires_at > ?", StatusOpen, filter.Now)
		}
	}

	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if l := strings.TrimSpace(filter.Location); l != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(l)+"%")
	}
	if filter.EmploymentType != "" {
		query = query.Where("employment_type = ?", filter.EmploymentType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []Job
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&jobs).Error
	return jobs, total, err
}

func (r *gormRepository) ExpireBefore(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&Job{}).
		Where("status = ? AND expires_at <= ?", StatusOpen, now).
		Updates(map[string]interface{}{"status": StatusExpired, "updated_at": now})
	return res.RowsAffected, res.Error
}
