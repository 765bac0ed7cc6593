// File: internal/user/model.go
package user

import (
	"time"

	"mybench_backend/internal/common"
	"mybench_backend/internal/shared"

	"github.com/google/uuid"
)

// User represents the user model in the database.
type User struct {
	common.BaseModel
	FirebaseUID       string     `gorm:"type:varchar(128);uniqueIndex;not null"`
	Email             *string    `gorm:"type:varchar(255);uniqueIndex"` // NULL for phone-only Firebase accounts
	FirstName         *string    `gorm:"type:varchar(100)"`
	LastName          *string    `gorm:"type:varchar(100)"`
	ProfilePictureURL *string    `gorm:"type:text"`
	Role              string     `gorm:"type:varchar(50);not null;default:'candidate';index"`
	CompanyID         *uuid.UUID `gorm:"type:uuid;index"`
	IsActive          bool       `gorm:"not null;default:true"`
	LastLoginAt       *time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// EmailValue returns the email or an empty string.
func (u *User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// --- DTOs ---

// UpdateProfileRequest holds the fields a user may change on their own profile.
type UpdateProfileRequest struct {
	FirstName         *string `json:"first_name" binding:"omitempty,max=100"`
	LastName          *string `json:"last_name" binding:"omitempty,max=100"`
	ProfilePictureURL *string `json:"profile_picture_url" binding:"omitempty,url"`
}

// UpdateRoleRequest is used by super admins to change a user's role.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=candidate recruiter company_admin super_admin"`
}

// SetActiveRequest is used by super admins to (de)activate an account.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// ListUsersQuery filters the admin user listing.
type ListUsersQuery struct {
	Role     string `form:"role" binding:"omitempty,oneof=candidate recruiter company_admin super_admin"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// DBToShared converts a GORM user.User model to a shared.User DTO.
func DBToShared(dbUser *User) *shared.User {
	if dbUser == nil {
		return nil
	}
	return &shared.User{
		ID:                dbUser.ID,
		FirebaseUID:       dbUser.FirebaseUID,
		Email:             dbUser.EmailValue(),
		FirstName:         dbUser.FirstName,
		LastName:          dbUser.LastName,
		ProfilePictureURL: dbUser.ProfilePictureURL,
		Role:              dbUser.Role,
		CompanyID:         dbUser.CompanyID,
		IsActive:          dbUser.IsActive,
		CreatedAt:         dbUser.CreatedAt,
		UpdatedAt:         dbUser.UpdatedAt,
		LastLoginAt:       dbUser.LastLoginAt,
	}
}
