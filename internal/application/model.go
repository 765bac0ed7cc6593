// File: internal/application/model.go
package application

import (
	"time"

	"mybench_backend/internal/candidate"
	"mybench_backend/internal/common"

	"github.com/google/uuid"
)

// Channel says how an application reached the company.
type Channel string

const (
	// ChannelDirect is a candidate applying for themselves.
	ChannelDirect Channel = "direct"
	// ChannelRecruiter is a recruiter submitting a candidate.
	ChannelRecruiter Channel = "recruiter"
)

// Status is the pipeline stage of an application.
type Status string

const (
	StatusApplied   Status = "applied"
	StatusReviewing Status = "reviewing"
	StatusInterview Status = "interview"
	StatusOffered   Status = "offered"
	StatusHired     Status = "hired"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

var pipeline = map[Status]Status{
	StatusApplied:   StatusReviewing,
	StatusReviewing: StatusInterview,
	StatusInterview: StatusOffered,
	StatusOffered:   StatusHired,
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusHired || s == StatusRejected || s == StatusWithdrawn
}

// CanMoveTo reports whether the company may move an application from s to next.
// Withdrawal is not a company transition.
func (s Status) CanMoveTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusRejected {
		return true
	}
	return pipeline[s] == next
}

// Application links a candidate to a job.
type Application struct {
	common.BaseModel
	JobID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_application_job_candidate"`
	CandidateID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_application_job_candidate"`
	CompanyID         uuid.UUID `gorm:"type:uuid;not null;index"`
	SubmittedByUserID uuid.UUID `gorm:"type:uuid;not null;index"`
	Channel           Channel   `gorm:"type:varchar(20);not null"`
	Status            Status    `gorm:"type:varchar(20);not null;index"`
	CoverNote         string    `gorm:"type:text"`
	StatusChangedAt   time.Time `gorm:"not null"`
}

// TableName specifies the table name for the Application model.
func (Application) TableName() string {
	return "applications"
}

// Entry is an application together with the candidate it concerns.
type Entry struct {
	Application Application
	Candidate   *candidate.Candidate
}

// --- DTOs ---

type ApplyRequest struct {
	CoverNote string `json:"cover_note" binding:"omitempty,max=5000"`
}

type SubmitRequest struct {
	CandidateID string `json:"candidate_id" binding:"required,uuid"`
	CoverNote   string `json:"cover_note" binding:"omitempty,max=5000"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=reviewing interview offered hired rejected"`
}

// ListQuery holds the query parameters of the application listings.
type ListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   Status `form:"status" binding:"omitempty,oneof=applied reviewing interview offered hired rejected withdrawn"`
}

// ApplicationResponse defines the structure for application data sent in API responses.
type ApplicationResponse struct {
	ID                uuid.UUID                    `json:"id"`
	JobID             uuid.UUID                    `json:"job_id"`
	CandidateID       uuid.UUID                    `json:"candidate_id"`
	CompanyID         uuid.UUID                    `json:"company_id"`
	SubmittedByUserID uuid.UUID                    `json:"submitted_by_user_id"`
	Channel           Channel                      `json:"channel"`
	Status            Status                       `json:"status"`
	CoverNote         string                       `json:"cover_note,omitempty"`
	StatusChangedAt   time.Time                    `json:"status_changed_at"`
	CreatedAt         time.Time                    `json:"created_at"`
	UpdatedAt         time.Time                    `json:"updated_at"`
	Candidate         *candidate.CandidateResponse `json:"candidate,omitempty"`
}

// ToApplicationResponse converts an application to its API form. Applicants share
// their contact details with the company they applied to.
func ToApplicationResponse(a *Application, c *candidate.Candidate) ApplicationResponse {
	resp := ApplicationResponse{
		ID:                a.ID,
		JobID:             a.JobID,
		CandidateID:       a.CandidateID,
		CompanyID:         a.CompanyID,
		SubmittedByUserID: a.SubmittedByUserID,
		Channel:           a.Channel,
		Status:            a.Status,
		CoverNote:         a.CoverNote,
		StatusChangedAt:   a.StatusChangedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if c != nil {
		cr := candidate.ToCandidateResponse(c, true)
		resp.Candidate = &cr
	}
	return resp
}
