// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"strings"

	"mybench_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for user data operations.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByFirebaseUID(ctx context.Context, firebaseUID string) (*User, error)
	Update(ctx context.Context, user *User) error
	List(ctx context.Context, role string, page, pageSize int) ([]User, int64, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]User, error)
	SetCompany(ctx context.Context, userID uuid.UUID, companyID *uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func normalizeEmailPtr(email *string) {
	if email != nil {
		*email = common.NormalizeEmail(*email)
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// Create inserts a new user record into the database.
func (r *gormRepository) Create(ctx context.Context, user *User) error {
	normalizeEmailPtr(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("User with this email or Firebase account already exists.")
		}
		return err
	}
	return nil
}

// FindByEmail retrieves a user by their email address.
func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var userModel User
	err := r.db.WithContext(ctx).Where("email = ?", common.NormalizeEmail(email)).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found with this email.")
		}
		return nil, err
	}
	return &userModel, nil
}

// FindByFirebaseUID retrieves a user by their Firebase UID.
func (r *gormRepository) FindByFirebaseUID(ctx context.Context, firebaseUID string) (*User, error) {
	var userModel User
	err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found with this Firebase UID.")
		}
		return nil, err
	}
	return &userModel, nil
}

// FindByID retrieves a user by their ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var userModel User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found with this ID.")
		}
		return nil, err
	}
	return &userModel, nil
}

// Update modifies an existing user record in the database.
func (r *gormRepository) Update(ctx context.Context, user *User) error {
	normalizeEmailPtr(user.Email)
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("Update failed: email already taken.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) List(ctx context.Context, role string, page, pageSize int) ([]User, int64, error) {
	query := r.db.WithContext(ctx).Model(&User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *gormRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

// SetCompany updates only the company link so concurrent profile edits are not overwritten.
func (r *gormRepository) SetCompany(ctx context.Context, userID uuid.UUID, companyID *uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Update("company_id", companyID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("User not found with this ID.")
	}
	return nil
}
