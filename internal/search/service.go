// File: internal/search/service.go
package search

import (
	"context"
	"errors"
	"sort"

	"mybench_backend/internal/candidate"
	"mybench_backend/internal/common"
	"mybench_backend/internal/config"
	"mybench_backend/internal/credit"
	"mybench_backend/internal/job"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobReader loads a job on behalf of a viewer, enforcing job visibility.
type JobReader interface {
	GetJob(ctx context.Context, viewer common.Viewer, id uuid.UUID) (*job.Job, error)
}

// ContactResolver reports which candidates the viewer has unlocked.
type ContactResolver interface {
	UnlockedCandidateIDs(ctx context.Context, viewer common.Viewer, candidateIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// Results is one page of search hits.
type Results struct {
	Items      []candidate.CandidateResponse `json:"items"`
	Pagination *common.Pagination            `json:"-"`
	Query      string                        `json:"query"`
	Terms      []string                      `json:"terms"`
	Considered int                           `json:"considered"`
	Truncated  bool                          `json:"truncated"`
}

// Match is a candidate scored against a job.
type Match struct {
	Candidate     candidate.CandidateResponse `json:"candidate"`
	Score         float64                     `json:"score"`
	MatchedSkills []string                    `json:"matched_skills"`
	MissingSkills []string                    `json:"missing_skills"`
}

// MatchResults is one page of job matches.
type MatchResults struct {
	Job        job.JobResponse    `json:"job"`
	Items      []Match            `json:"items"`
	Pagination *common.Pagination `json:"-"`
	Considered int                `json:"considered"`
}

// Service defines the candidate search operations.
type Service interface {
	Search(ctx context.Context, viewer common.Viewer, criteria Criteria) (*Results, error)
	MatchCandidatesForJob(ctx context.Context, viewer common.Viewer, jobID uuid.UUID, minScore float64, page, pageSize int) (*MatchResults, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	sources    []Source
	jobs       JobReader
	contacts   ContactResolver
	maxResults int
	logger     *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a search service over the bench and direct candidate sources.
func NewService(store CandidateStore, jobs JobReader, contacts ContactResolver, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	limit := cfg.SearchMaxResults
	if limit <= 0 {
		limit = 500
	}
	return &ServiceImplementation{
		sources: []Source{
			DirectSource{Store: store, Limit: limit},
			BenchSource{Store: store, Limit: limit},
		},
		jobs:       jobs,
		contacts:   contacts,
		maxResults: limit,
		logger:     logger.Named("search_service"),
	}
}

func requireSearcher(viewer common.Viewer) error {
	if !common.IsHiringRole(viewer.Role) {
		return common.ErrForbidden.WithDetails("Only recruiters and company admins can search candidates.")
	}
	return nil
}

// candidatePool aggregates the sources and caps the pool at maxResults, keeping the most recent.
func (s *ServiceImplementation) candidatePool(ctx context.Context, viewer common.Viewer) ([]Hit, bool, error) {
	hits, err := Aggregate(ctx, viewer, s.sources...)
	if err != nil {
		s.logger.Error("Candidate aggregation failed", zap.Error(err), zap.String("userID", viewer.UserID.String()))
		return nil, false, err
	}
	if len(hits) <= s.maxResults {
		return hits, false, nil
	}
	sortHits(hits, SortRecent)
	return hits[:s.maxResults], true, nil
}

// present redacts contact details the viewer has not unlocked.
func (s *ServiceImplementation) present(ctx context.Context, viewer common.Viewer, hits []Hit) ([]candidate.CandidateResponse, error) {
	ids := make([]uuid.UUID, 0, len(hits))
	for i := range hits {
		ids = append(ids, hits[i].Candidate.ID)
	}
	unlocked := map[uuid.UUID]bool{}
	if s.contacts != nil && len(ids) > 0 {
		var err error
		unlocked, err = s.contacts.UnlockedCandidateIDs(ctx, viewer, ids)
		if err != nil {
			return nil, err
		}
	}
	out := make([]candidate.CandidateResponse, 0, len(hits))
	for i := range hits {
		c := &hits[i].Candidate
		resp := candidate.ToCandidateResponse(c, credit.ContactVisible(viewer, c, unlocked))
		resp.AlsoOnBench = hits[i].AlsoOnBench
		out = append(out, resp)
	}
	return out, nil
}

func (s *ServiceImplementation) Search(ctx context.Context, viewer common.Viewer, criteria Criteria) (*Results, error) {
	if err := requireSearcher(viewer); err != nil {
		return nil, err
	}
	criteria.normalize()
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	query, err := Parse(criteria.Query)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return nil, common.ErrInvalidQuery.WithDetails(map[string]interface{}{
				"offset":  perr.Offset,
				"message": perr.Message,
			})
		}
		return nil, err
	}

	pool, truncated, err := s.candidatePool(ctx, viewer)
	if err != nil {
		return nil, err
	}

	f := filter{criteria: &criteria, query: query}
	var matched []Hit
	for i := range pool {
		if f.accepts(&pool[i].Candidate) {
			matched = append(matched, pool[i])
		}
	}
	sortHits(matched, criteria.Sort)

	page, pageSize := common.NormalizePage(criteria.Page, criteria.PageSize)
	start, end := paginate(len(matched), page, pageSize)
	items, err := s.present(ctx, viewer, matched[start:end])
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Candidate search",
		zap.String("userID", viewer.UserID.String()),
		zap.String("query", query.String()),
		zap.Int("considered", len(pool)),
		zap.Int("matched", len(matched)),
	)
	return &Results{
		Items:      items,
		Pagination: common.NewPagination(int64(len(matched)), page, pageSize),
		Query:      query.String(),
		Terms:      query.Terms(),
		Considered: len(pool),
		Truncated:  truncated,
	}, nil
}

// ScoreSkills returns the share of required skills the candidate lists, with the
// matched and missing skills. A job without required skills scores 1.
func ScoreSkills(required []string, c *candidate.Candidate) (float64, []string, []string) {
	matched := []string{}
	missing := []string{}
	if len(required) == 0 {
		return 1, matched, missing
	}
	for _, skill := range required {
		if c.HasSkill(skill) {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	return float64(len(matched)) / float64(len(required)), matched, missing
}

func (s *ServiceImplementation) MatchCandidatesForJob(ctx context.Context, viewer common.Viewer, jobID uuid.UUID, minScore float64, page, pageSize int) (*MatchResults, error) {
	if err := requireSearcher(viewer); err != nil {
		return nil, err
	}
	if minScore < 0 || minScore > 1 {
		return nil, common.ErrBadRequest.WithDetails("min_score must be between 0 and 1.")
	}
	j, err := s.jobs.GetJob(ctx, viewer, jobID)
	if err != nil {
		return nil, err
	}

	pool, _, err := s.candidatePool(ctx, viewer)
	if err != nil {
		return nil, err
	}

	type scored struct {
		hit     Hit
		score   float64
		matched []string
		missing []string
	}
	var ranked []scored
	for i := range pool {
		c := &pool[i].Candidate
		if c.ExperienceYears < j.MinExperience {
			continue
		}
		score, matched, missing := ScoreSkills(j.RequiredSkills, c)
		if score < minScore {
			continue
		}
		ranked = append(ranked, scored{hit: pool[i], score: score, matched: matched, missing: missing})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].score != ranked[b].score {
			return ranked[a].score > ranked[b].score
		}
		ca, cb := &ranked[a].hit.Candidate, &ranked[b].hit.Candidate
		if !ca.UpdatedAt.Equal(cb.UpdatedAt) {
			return ca.UpdatedAt.After(cb.UpdatedAt)
		}
		return ca.ID.String() < cb.ID.String()
	})

	page, pageSize = common.NormalizePage(page, pageSize)
	start, end := paginate(len(ranked), page, pageSize)
	window := ranked[start:end]
	hits := make([]Hit, 0, len(window))
	for _, r := range window {
		hits = append(hits, r.hit)
	}
	responses, err := s.present(ctx, viewer, hits)
	if err != nil {
		return nil, err
	}
	items := make([]Match, 0, len(window))
	for i, r := range window {
		items = append(items, Match{
			Candidate:     responses[i],
			Score:         r.score,
			MatchedSkills: r.matched,
			MissingSkills: r.missing,
		})
	}

	return &MatchResults{
		Job:        job.ToJobResponse(j),
		Items:      items,
		Pagination: common.NewPagination(int64(len(ranked)), page, pageSize),
		Considered: len(pool),
	}, nil
}
