// File: internal/candidate/model.go
package candidate

import (
	"strings"
	"time"
	"unicode/utf8"

	"mybench_backend/internal/common"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Source says where a candidate record came from.
type Source string

const (
	// SourceBench is a candidate a recruiter keeps on their bench.
	SourceBench Source = "bench"
	// SourceDirect is a candidate who signed up and manages their own profile.
	SourceDirect Source = "direct"
)

// Availability values.
const (
	AvailabilityImmediate    = "immediate"
	AvailabilityTwoWeeks     = "two_weeks"
	AvailabilityOneMonth     = "one_month"
	AvailabilityNotAvailable = "not_available"
)

// Candidate represents a bench or direct candidate profile.
type Candidate struct {
	common.BaseModel
	Source            Source         `gorm:"type:varchar(10);not null;index"`
	UserID            *uuid.UUID     `gorm:"type:uuid;uniqueIndex"`
	OwnerRecruiterID  *uuid.UUID     `gorm:"type:uuid;index"`
	OwnerCompanyID    *uuid.UUID     `gorm:"type:uuid;index"`
	FullName          string         `gorm:"type:varchar(200);not null"`
	Email             string         `gorm:"type:varchar(255);index"`
	Phone             string         `gorm:"type:varchar(50)"`
	Title             string         `gorm:"type:varchar(200)"`
	Location          string         `gorm:"type:varchar(200)"`
	Skills            pq.StringArray `gorm:"type:text"`
	ExperienceYears   int            `gorm:"not null;default:0"`
	Summary           string         `gorm:"type:text"`
	WorkAuthorization string         `gorm:"type:varchar(100)"`
	Availability      string         `gorm:"type:varchar(20);not null"`
	HourlyRate        *float64
	IsPrivate         bool `gorm:"not null"`
	IsActive          bool `gorm:"not null;index"`
}

// TableName specifies the table name for the Candidate model.
func (Candidate) TableName() string {
	return "candidates"
}

// IsOwnedBy reports whether the user is the recruiter who owns this bench candidate.
func (c *Candidate) IsOwnedBy(userID uuid.UUID) bool {
	return c.OwnerRecruiterID != nil && *c.OwnerRecruiterID == userID
}

// VisibleTo reports whether the viewer may see this candidate at all.
// Contact details are governed separately by the credit module.
func (c *Candidate) VisibleTo(viewer common.Viewer) bool {
	if viewer.IsSuperAdmin() {
		return true
	}
	if c.UserID != nil && *c.UserID == viewer.UserID {
		return true
	}
	if !common.IsHiringRole(viewer.Role) {
		return false
	}
	if c.Source == SourceDirect {
		return c.IsActive
	}
	if c.IsOwnedBy(viewer.UserID) || viewer.InCompany(c.OwnerCompanyID) {
		return true
	}
	return c.IsActive && !c.IsPrivate
}

// SearchText is the text boolean queries are matched against.
func (c *Candidate) SearchText() string {
	parts := []string{c.FullName, c.Title, c.Location, strings.Join(c.Skills, " "), c.Summary, c.WorkAuthorization}
	return strings.Join(parts, "\n")
}

// HasSkill reports whether the candidate lists the skill (case-insensitive exact match).
func (c *Candidate) HasSkill(skill string) bool {
	skill = strings.TrimSpace(skill)
	for _, s := range c.Skills {
		if strings.EqualFold(strings.TrimSpace(s), skill) {
			return true
		}
	}
	return false
}

// --- DTOs ---

// ProfileRequest holds the fields shared by direct profiles and bench candidates.
type ProfileRequest struct {
	FullName          string   `json:"full_name" binding:"required,min=2,max=200"`
	Phone             string   `json:"phone" binding:"omitempty,max=50"`
	Title             string   `json:"title" binding:"omitempty,max=200"`
	Location          string   `json:"location" binding:"omitempty,max=200"`
	Skills            []string `json:"skills" binding:"omitempty,max=50,dive,max=60"`
	ExperienceYears   int      `json:"experience_years" binding:"min=0,max=70"`
	Summary           string   `json:"summary" binding:"omitempty,max=10000"`
	WorkAuthorization string   `json:"work_authorization" binding:"omitempty,max=100"`
	Availability      string   `json:"availability" binding:"required,oneof=immediate two_weeks one_month not_available"`
	HourlyRate        *float64 `json:"hourly_rate" binding:"omitempty,min=0"`
	IsActive          *bool    `json:"is_active"`
}

// UpsertProfileRequest is the body for PUT /candidates/me.
type UpsertProfileRequest struct {
	ProfileRequest
}

// BenchCandidateRequest is the body for POST/PUT /candidates/bench.
type BenchCandidateRequest struct {
	ProfileRequest
	Email     string `json:"email" binding:"required,email"`
	IsPrivate bool   `json:"is_private"`
}

// CandidateResponse defines the structure for candidate data sent in API responses.
type CandidateResponse struct {
	ID                uuid.UUID  `json:"id"`
	Source            Source     `json:"source"`
	UserID            *uuid.UUID `json:"user_id,omitempty"`
	OwnerRecruiterID  *uuid.UUID `json:"owner_recruiter_id,omitempty"`
	OwnerCompanyID    *uuid.UUID `json:"owner_company_id,omitempty"`
	FullName          string     `json:"full_name"`
	Email             string     `json:"email,omitempty"`
	Phone             string     `json:"phone,omitempty"`
	Title             string     `json:"title,omitempty"`
	Location          string     `json:"location,omitempty"`
	Skills            []string   `json:"skills"`
	ExperienceYears   int        `json:"experience_years"`
	Summary           string     `json:"summary,omitempty"`
	WorkAuthorization string     `json:"work_authorization,omitempty"`
	Availability      string     `json:"availability"`
	HourlyRate        *float64   `json:"hourly_rate,omitempty"`
	IsPrivate         bool       `json:"is_private"`
	IsActive          bool       `json:"is_active"`
	ContactUnlocked   bool       `json:"contact_unlocked"`
	AlsoOnBench       bool       `json:"also_on_bench,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ToCandidateResponse converts a Candidate to its API form. Contact fields are
// masked unless contactVisible is set.
func ToCandidateResponse(c *Candidate, contactVisible bool) CandidateResponse {
	skills := []string(c.Skills)
	if skills == nil {
		skills = []string{}
	}
	resp := CandidateResponse{
		ID:                c.ID,
		Source:            c.Source,
		UserID:            c.UserID,
		OwnerRecruiterID:  c.OwnerRecruiterID,
		OwnerCompanyID:    c.OwnerCompanyID,
		FullName:          c.FullName,
		Email:             c.Email,
		Phone:             c.Phone,
		Title:             c.Title,
		Location:          c.Location,
		Skills:            skills,
		ExperienceYears:   c.ExperienceYears,
		Summary:           c.Summary,
		WorkAuthorization: c.WorkAuthorization,
		Availability:      c.Availability,
		HourlyRate:        c.HourlyRate,
		IsPrivate:         c.IsPrivate,
		IsActive:          c.IsActive,
		ContactUnlocked:   contactVisible,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	if !contactVisible {
		resp.Email = MaskEmail(c.Email)
		resp.Phone = MaskPhone(c.Phone)
	}
	return resp
}

// MaskEmail keeps the first character of the local part and the domain: j***@example.com.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	_, n := utf8.DecodeRuneInString(email)
	return email[:n] + "***" + email[at:]
}

// MaskPhone keeps the last four digits: ***-1234.
func MaskPhone(phone string) string {
	var digits []rune
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return ""
	}
	if len(digits) <= 4 {
		return "***"
	}
	return "***-" + string(digits[len(digits)-4:])
}
