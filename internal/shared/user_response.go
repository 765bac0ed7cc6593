// File: internal/shared/user_response.go
package shared

import (
	"time"

	"github.com/google/uuid"
)

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	FirstName         *string    `json:"first_name,omitempty"`
	LastName          *string    `json:"last_name,omitempty"`
	ProfilePictureURL *string    `json:"profile_picture_url,omitempty"`
	Role              string     `json:"role"`
	CompanyID         *uuid.UUID `json:"company_id,omitempty"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
}

// ToUserResponse converts a shared.User to a UserResponse DTO.
func ToUserResponse(svUser *User) UserResponse {
	return UserResponse{
		ID:                svUser.ID,
		Email:             svUser.Email,
		FirstName:         svUser.FirstName,
		LastName:          svUser.LastName,
		ProfilePictureURL: svUser.ProfilePictureURL,
		Role:              svUser.Role,
		CompanyID:         svUser.CompanyID,
		IsActive:          svUser.IsActive,
		CreatedAt:         svUser.CreatedAt,
		UpdatedAt:         svUser.UpdatedAt,
		LastLoginAt:       svUser.LastLoginAt,
	}
}

// DisplayName joins first and last name, falling back to the email.
func (u *User) DisplayName() string {
	var name string
	if u.FirstName != nil {
		name = *u.FirstName
	}
	if u.LastName != nil && *u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += *u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}
