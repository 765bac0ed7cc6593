// File: internal/company/model.go
package company

import (
	"time"

	"mybench_backend/internal/common"

	"github.com/google/uuid"
)

// Company lifecycle states.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Company represents a hiring company on the marketplace.
type Company struct {
	common.BaseModel
	Name            string    `gorm:"type:varchar(200);not null"`
	Slug            string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_companies_slug"`
	Website         *string   `gorm:"type:text"`
	Description     *string   `gorm:"type:text"`
	Location        *string   `gorm:"type:varchar(200)"`
	Status          string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName specifies the table name for the Company model.
func (Company) TableName() string {
	return "companies"
}

// IsActive reports whether the company may post jobs.
func (c *Company) IsActive() bool { return c.Status == StatusActive }

// --- DTOs ---

// CreateCompanyRequest is the body for POST /companies.
type CreateCompanyRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=200"`
	Website     *string `json:"website" binding:"omitempty,url"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Location    *string `json:"location" binding:"omitempty,max=200"`
}

// UpdateCompanyRequest is the body for PUT /companies/:id.
type UpdateCompanyRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=200"`
	Website     *string `json:"website" binding:"omitempty,url"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Location    *string `json:"location" binding:"omitempty,max=200"`
}

// SetStatusRequest is the body for PATCH /companies/:id/status.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending active suspended"`
}

// AddMemberRequest is the body for POST /companies/:id/members.
type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ListCompaniesQuery filters GET /companies.
type ListCompaniesQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending active suspended"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CompanyResponse defines the structure for company data sent in API responses.
type CompanyResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Website         *string   `json:"website,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Location        *string   `json:"location,omitempty"`
	Status          string    `json:"status"`
	CreatedByUserID uuid.UUID `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToCompanyResponse converts a Company model to a CompanyResponse DTO.
func ToCompanyResponse(c *Company) CompanyResponse {
	return CompanyResponse{
		ID:              c.ID,
		Name:            c.Name,
		Slug:            c.Slug,
		Website:         c.Website,
		Description:     c.Description,
		Location:        c.Location,
		Status:          c.Status,
		CreatedByUserID: c.CreatedByUserID,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
