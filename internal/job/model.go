// File: internal/job/model.go
package job

import (
	"time"

	"mybench_backend/internal/common"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// EmploymentType is the engagement model of a job.
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "full_time"
	EmploymentPartTime EmploymentType = "part_time"
	EmploymentContract EmploymentType = "contract"
	EmploymentC2C      EmploymentType = "c2c"
)

// Visibility restricts which audience may see a job.
type Visibility string

const (
	VisibilityCandidates Visibility = "candidates"
	VisibilityRecruiters Visibility = "recruiters"
	VisibilityBoth       Visibility = "both"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusOpen    Status = "open"
	StatusClosed  Status = "closed"
	StatusExpired Status = "expired"
)

// Job represents a job posting owned by a company.
type Job struct {
	common.BaseModel
	CompanyID           uuid.UUID      `gorm:"type:uuid;not null;index"`
	PostedByUserID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title               string         `gorm:"type:varchar(200);not null"`
	DescriptionMarkdown string         `gorm:"type:text;not null"`
	DescriptionHTML     string         `gorm:"type:text;not null"`
	Location            string         `gorm:"type:varchar(200)"`
	EmploymentType      EmploymentType `gorm:"type:varchar(20);not null"`
	RequiredSkills      pq.StringArray `gorm:"type:text"`
	MinExperience       int            `gorm:"not null;default:0"`
	RateMin             *float64
	RateMax             *float64
	Visibility          Visibility `gorm:"type:varchar(20);not null;index"`
	Status              Status     `gorm:"type:varchar(20);not null;index"`
	ExpiresAt           time.Time  `gorm:"not null;index"`
}

// TableName specifies the table name for the Job model.
func (Job) TableName() string {
	return "jobs"
}

// IsOpen reports whether the job accepts applications at the given time.
func (j *Job) IsOpen(now time.Time) bool {
	return j.Status == StatusOpen && j.ExpiresAt.After(now)
}

// AudiencesFor lists the visibilities a role may see. Nil means every job.
func AudiencesFor(role string) []Visibility {
	switch role {
	case common.RoleSuperAdmin:
		return nil
	case common.RoleCandidate:
		return []Visibility{VisibilityCandidates, VisibilityBoth}
	case common.RoleRecruiter, common.RoleCompanyAdmin:
		return []Visibility{VisibilityRecruiters, VisibilityBoth}
	}
	return []Visibility{}
}

// VisibleToAudience reports whether the posting targets the given role.
func (j *Job) VisibleToAudience(role string) bool {
	audiences := AudiencesFor(role)
	if audiences == nil {
		return true
	}
	for _, v := range audiences {
		if v == j.Visibility {
			return true
		}
	}
	return false
}

// CanView reports whether the viewer may read the job. Company members see all of
// their company's jobs; everybody else only sees open jobs aimed at their role.
func (j *Job) CanView(viewer common.Viewer, now time.Time) bool {
	if viewer.IsSuperAdmin() || viewer.InCompany(&j.CompanyID) {
		return true
	}
	return j.IsOpen(now) && j.VisibleToAudience(viewer.Role)
}

// --- DTOs ---

// CreateJobRequest is the body for POST /jobs.
type CreateJobRequest struct {
	Title          string         `json:"title" binding:"required,min=3,max=200"`
	Description    string         `json:"description" binding:"required,max=20000"`
	Location       string         `json:"location" binding:"omitempty,max=200"`
	EmploymentType EmploymentType `json:"employment_type" binding:"required,oneof=full_time part_time contract c2c"`
	RequiredSkills []string       `json:"required_skills" binding:"omitempty,max=30,dive,max=60"`
	MinExperience  int            `json:"min_experience" binding:"min=0,max=50"`
	RateMin        *float64       `json:"rate_min" binding:"omitempty,min=0"`
	RateMax        *float64       `json:"rate_max" binding:"omitempty,min=0"`
	Visibility     Visibility     `json:"visibility" binding:"required,oneof=candidates recruiters both"`
	ExpiresAt      *time.Time     `json:"expires_at"`
}

// UpdateJobRequest is the body for PUT /jobs/:id. Nil fields are left untouched.
type UpdateJobRequest struct {
	Title          *string         `json:"title" binding:"omitempty,min=3,max=200"`
	Description    *string         `json:"description" binding:"omitempty,max=20000"`
	Location       *string         `json:"location" binding:"omitempty,max=200"`
	EmploymentType *EmploymentType `json:"employment_type" binding:"omitempty,oneof=full_time part_time contract c2c"`
	RequiredSkills []string        `json:"required_skills" binding:"omitempty,max=30,dive,max=60"`
	MinExperience  *int            `json:"min_experience" binding:"omitempty,min=0,max=50"`
	RateMin        *float64        `json:"rate_min" binding:"omitempty,min=0"`
	RateMax        *float64        `json:"rate_max" binding:"omitempty,min=0"`
	Visibility     *Visibility     `json:"visibility" binding:"omitempty,oneof=candidates recruiters both"`
	ExpiresAt      *time.Time      `json:"expires_at"`
}

// ListJobsQuery holds the query parameters of GET /jobs.
type ListJobsQuery struct {
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
	Search         string `form:"q" binding:"omitempty,max=200"`
	Location       string `form:"location" binding:"omitempty,max=200"`
	EmploymentType string `form:"employment_type" binding:"omitempty,oneof=full_time part_time contract c2c"`
	CompanyID      string `form:"company_id" binding:"omitempty,uuid"`
	IncludeClosed  bool   `form:"include_closed"`
}

// JobResponse defines the structure for job data sent in API responses.
type JobResponse struct {
	ID                  uuid.UUID      `json:"id"`
	CompanyID           uuid.UUID      `json:"company_id"`
	PostedByUserID      uuid.UUID      `json:"posted_by_user_id"`
	Title               string         `json:"title"`
	DescriptionMarkdown string         `json:"description_markdown"`
	DescriptionHTML     string         `json:"description_html"`
	Location            string         `json:"location,omitempty"`
	EmploymentType      EmploymentType `json:"employment_type"`
	RequiredSkills      []string       `json:"required_skills"`
	MinExperience       int            `json:"min_experience"`
	RateMin             *float64       `json:"rate_min,omitempty"`
	RateMax             *float64       `json:"rate_max,omitempty"`
	Visibility          Visibility     `json:"visibility"`
	Status              Status         `json:"status"`
	ExpiresAt           time.Time      `json:"expires_at"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// ToJobResponse converts a Job model to a JobResponse DTO.
func ToJobResponse(j *Job) JobResponse {
	skills := []string(j.RequiredSkills)
	if skills == nil {
		skills = []string{}
	}
	return JobResponse{
		ID:                  j.ID,
		CompanyID:           j.CompanyID,
		PostedByUserID:      j.PostedByUserID,
		Title:               j.Title,
		DescriptionMarkdown: j.DescriptionMarkdown,
		DescriptionHTML:     j.DescriptionHTML,
		Location:            j.Location,
		EmploymentType:      j.EmploymentType,
		RequiredSkills:      skills,
		MinExperience:       j.MinExperience,
		RateMin:             j.RateMin,
		RateMax:             j.RateMax,
		Visibility:          j.Visibility,
		Status:              j.Status,
		ExpiresAt:           j.ExpiresAt,
		CreatedAt:           j.CreatedAt,
		UpdatedAt:           j.UpdatedAt,
	}
}
