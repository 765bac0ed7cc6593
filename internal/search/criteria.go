// File: internal/search/criteria.go
package search

import (
	"sort"
	"strings"
	"time"

	"mybench_backend/internal/candidate"
	"mybench_backend/internal/common"

	"github.com/go-playground/validator/v10"
)

// Sort orders.
const (
	SortRecent     = "recent"
	SortExperience = "experience"
	SortName       = "name"
)

// Criteria is a candidate search request. It binds from the query string of
// GET /search/candidates and from the JSON body of POST /search/candidates.
type Criteria struct {
	Query             string     `form:"q" json:"q" validate:"max=1000"`
	Skills            []string   `form:"skills" json:"skills" validate:"max=30,dive,max=60"`
	Location          string     `form:"location" json:"location" validate:"max=200"`
	MinExperience     *int       `form:"min_experience" json:"min_experience" validate:"omitempty,min=0,max=70"`
	MaxExperience     *int       `form:"max_experience" json:"max_experience" validate:"omitempty,min=0,max=70"`
	Source            string     `form:"source" json:"source" validate:"omitempty,oneof=bench direct"`
	Availability      []string   `form:"availability" json:"availability" validate:"max=4,dive,oneof=immediate two_weeks one_month not_available"`
	WorkAuthorization []string   `form:"work_authorization" json:"work_authorization" validate:"max=20,dive,max=100"`
	MaxHourlyRate     *float64   `form:"max_hourly_rate" json:"max_hourly_rate" validate:"omitempty,min=0"`
	UpdatedSince      *time.Time `form:"updated_since" json:"updated_since" time_format:"2006-01-02T15:04:05Z07:00"`
	Sort              string     `form:"sort" json:"sort" validate:"omitempty,oneof=recent experience name"`
	Page              int        `form:"page" json:"page" validate:"min=0"`
	PageSize          int        `form:"page_size" json:"page_size" validate:"min=0,max=100"`
}

var validate = validator.New()

// Validate checks field constraints and cross-field ranges.
func (c *Criteria) Validate() error {
	if err := validate.Struct(c); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return common.NewValidationAPIError(common.FormatValidationErrors(ve))
		}
		return common.ErrBadRequest.WithDetails(err.Error())
	}
	if c.MinExperience != nil && c.MaxExperience != nil && *c.MinExperience > *c.MaxExperience {
		return common.NewValidationAPIError(map[string]string{
			"MaxExperience": "The maxexperience field must be greater than or equal to minexperience.",
		})
	}
	return nil
}

// normalize splits comma separated list values so ?skills=go,sql and
// ?skills=go&skills=sql mean the same thing.
func (c *Criteria) normalize() {
	c.Skills = splitValues(c.Skills)
	c.Availability = splitValues(c.Availability)
	c.WorkAuthorization = splitValues(c.WorkAuthorization)
	c.Location = strings.TrimSpace(c.Location)
	if c.Sort == "" {
		c.Sort = SortRecent
	}
}

func splitValues(in []string) []string {
	var parts []string
	for _, v := range in {
		parts = append(parts, strings.Split(v, ",")...)
	}
	return common.NormalizeList(parts)
}

// filter holds a compiled Criteria.
type filter struct {
	criteria *Criteria
	query    *Query
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}

func (f filter) accepts(c *candidate.Candidate) bool {
	cr := f.criteria
	if cr.Source != "" && string(c.Source) != cr.Source {
		return false
	}
	for _, skill := range cr.Skills {
		if !c.HasSkill(skill) {
			return false
		}
	}
	if cr.Location != "" && !strings.Contains(strings.ToLower(c.Location), strings.ToLower(cr.Location)) {
		return false
	}
	if cr.MinExperience != nil && c.ExperienceYears < *cr.MinExperience {
		return false
	}
	if cr.MaxExperience != nil && c.ExperienceYears > *cr.MaxExperience {
		return false
	}
	if len(cr.Availability) > 0 && !containsFold(cr.Availability, c.Availability) {
		return false
	}
	if len(cr.WorkAuthorization) > 0 && !containsFold(cr.WorkAuthorization, c.WorkAuthorization) {
		return false
	}
	if cr.MaxHourlyRate != nil && (c.HourlyRate == nil || *c.HourlyRate > *cr.MaxHourlyRate) {
		return false
	}
	if cr.UpdatedSince != nil && c.UpdatedAt.Before(*cr.UpdatedSince) {
		return false
	}
	return f.query.Match(c.SearchText())
}

// sortHits orders hits in place. Ties fall back to recency then ID for a stable order.
func sortHits(hits []Hit, order string) {
	recent := func(a, b *candidate.Candidate) bool {
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID.String() < b.ID.String()
	}
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := &hits[i].Candidate, &hits[j].Candidate
		switch order {
		case SortExperience:
			if a.ExperienceYears != b.ExperienceYears {
				return a.ExperienceYears > b.ExperienceYears
			}
		case SortName:
			an, bn := strings.ToLower(a.FullName), strings.ToLower(b.FullName)
			if an != bn {
				return an < bn
			}
		}
		return recent(a, b)
	})
}

// paginate returns the page window of a slice length n.
func paginate(n, page, pageSize int) (int, int) {
	start := (page - 1) * pageSize
	if start > n {
		start = n
	}
	end := start + pageSize
	if end > n {
		end = n
	}
	return start, end
}
