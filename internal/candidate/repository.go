// File: internal/candidate/repository.go
package candidate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mybench_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BenchScope narrows bench listings to what a viewer may see.
type BenchScope struct {
	ViewerID  uuid.UUID
	CompanyID *uuid.UUID
	All       bool
}

// Repository defines the interface for candidate data operations.
type Repository interface {
	Create(ctx context.Context, c *Candidate) error
	Update(ctx context.Context, c *Candidate) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Candidate, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Candidate, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Candidate, error)
	FindBenchByOwnerAndEmail(ctx context.Context, ownerID uuid.UUID, email string) (*Candidate, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page, pageSize int) ([]Candidate, int64, error)
	ListBench(ctx context.Context, scope BenchScope, limit int) ([]Candidate, error)
	ListDirect(ctx context.Context, limit int) ([]Candidate, error)
	FindAllForSync(ctx context.Context, offset, limit int) ([]Candidate, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM candidate repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique constraint") ||
		strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}

func (r *gormRepository) Create(ctx context.Context, c *Candidate) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("A candidate profile already exists for this user.")
		}
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

func (r *gormRepository) Update(ctx context.Context, c *Candidate) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Candidate{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Candidate not found or already deleted.")
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Candidate, error) {
	var c Candidate
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Candidate not found.")
		}
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Candidate, error) {
	var out []Candidate
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *gormRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*Candidate, error) {
	var c Candidate
	if err := r.db.WithContext(ctx).First(&c, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Candidate profile not found.")
		}
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) FindBenchByOwnerAndEmail(ctx context.Context, ownerID uuid.UUID, email string) (*Candidate, error) {
	var c Candidate
	err := r.db.WithContext(ctx).
		Where("source = ? AND owner_recruiter_id = ? AND email = ?", SourceBench, ownerID, common.NormalizeEmail(email)).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Bench candidate not found.")
		}
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, page, pageSize int) ([]Candidate, int64, error) {
	query := r.db.WithContext(ctx).Model(&Candidate{}).
		Where("source = ? AND owner_recruiter_id = ?", SourceBench, ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []Candidate
	err := query.Order("updated_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListBench returns active bench candidates inside the scope, most recently updated first.
func (r *gormRepository) ListBench(ctx context.Context, scope BenchScope, limit int) ([]Candidate, error) {
	query := r.db.WithContext(ctx).Where("source = ? AND is_active = ?", SourceBench, true)
	if !scope.All {
		if scope.CompanyID != nil {
			query = query.Where("(is_private = ? OR owner_recruiter_id = ? OR owner_company_id = ?)", false, scope.ViewerID, *scope.CompanyID)
		} else {
			query = query.Where("(is_private = ? OR owner_recruiter_id = ?)", false, scope.ViewerID)
		}
	}
	var out []Candidate
	err := query.Order("updated_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

// ListDirect returns active direct candidates, most recently updated first.
func (r *gormRepository) ListDirect(ctx context.Context, limit int) ([]Candidate, error) {
	var out []Candidate
	err := r.db.WithContext(ctx).
		Where("source = ? AND is_active = ?", SourceDirect, true).
		Order("updated_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *gormRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]Candidate, error) {
	var out []Candidate
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Offset(offset).Limit(limit).Find(&out).Error
	return out, err
}
