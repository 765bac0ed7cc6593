// File: internal/job/service.go
package job

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mybench_backend/internal/common"
	"mybench_backend/internal/company"
	"mybench_backend/internal/config"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
	"go.uber.org/zap"
)

// CompanyGate confirms a company may publish jobs. company.Service satisfies it.
type CompanyGate interface {
	EnsureCanPost(ctx context.Context, companyID uuid.UUID) (*company.Company, error)
}

// Service defines the interface for job-related business logic.
type Service interface {
	CreateJob(ctx context.Context, viewer common.Viewer, req CreateJobRequest) (*Job, error)
	UpdateJob(ctx context.Context, viewer common.Viewer, id uuid.UUID, req UpdateJobRequest) (*Job, error)
	CloseJob(ctx context.Context, viewer common.Viewer, id uuid.UUID) (*Job, error)
	GetJob(ctx context.Context, viewer common.Viewer, id uuid.UUID) (*Job, error)
	ListJobs(ctx context.Context, viewer common.Viewer, query ListJobsQuery) ([]Job, *common.Pagination, error)
	ExpireJobs(ctx context.Context, now time.Time) (int, error)
}

// ServiceImplementation implements the job Service interface.
type ServiceImplementation struct {
	repo      Repository
	companies CompanyGate
	cfg       *config.Config
	policy    *bluemonday.Policy
	now       func() time.Time
	logger    *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new job service.
func NewService(repo Repository, companies CompanyGate, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:      repo,
		companies: companies,
		cfg:       cfg,
		policy:    bluemonday.UGCPolicy(),
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger.Named("job_service"),
	}
}

// RenderDescription converts markdown to sanitised HTML.
func (s *ServiceImplementation) RenderDescription(markdown string) string {
	unsafe := blackfriday.Run([]byte(markdown))
	return string(s.policy.SanitizeBytes(unsafe))
}

func checkRates(lo, hi *float64) error {
	if lo != nil && hi != nil && *lo > *hi {
		return common.ErrBadRequest.WithDetails("rate_min cannot be greater than rate_max.")
	}
	return nil
}

// manageable loads a job the viewer may edit.
func (s *ServiceImplementation) manageable(ctx context.Context, viewer common.Viewer, id uuid.UUID) (*Job, error) {
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewer.IsSuperAdmin() {
		return j, nil
	}
	if !viewer.InCompany(&j.CompanyID) {
		if j.CanView(viewer, s.now()) {
			return nil, common.ErrForbidden.WithDetails("Only members of the posting company can manage this job.")
		}
		return nil, common.ErrNotFound.WithDetails("Job not found.")
	}
	return j, nil
}

func (s *ServiceImplementation) CreateJob(ctx context.Context, viewer common.Viewer, req CreateJobRequest) (*Job, error) {
	if viewer.Role != common.RoleRecruiter && viewer.Role != common.RoleCompanyAdmin {
		return nil, common.ErrForbidden.WithDetails("Only recruiters and company admins can post jobs.")
	}
	if viewer.CompanyID == nil {
		return nil, common.ErrForbidden.WithDetails("You must belong to a company to post jobs.")
	}
	if _, err := s.companies.EnsureCanPost(ctx, *viewer.CompanyID); err != nil {
		return nil, err
	}
	if err := checkRates(req.RateMin, req.RateMax); err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.AddDate(0, 0, s.cfg.DefaultJobLifespanDays)
	if req.ExpiresAt != nil {
		if !req.ExpiresAt.After(now) {
			return nil, common.ErrBadRequest.WithDetails("expires_at must be in the future.")
		}
		expiresAt = req.ExpiresAt.UTC()
	}

	j := &Job{
		CompanyID:           *viewer.CompanyID,
		PostedByUserID:      viewer.UserID,
		Title:               strings.TrimSpace(req.Title),
		DescriptionMarkdown: req.Description,
		DescriptionHTML:     s.RenderDescription(req.Description),
		Location:            strings.TrimSpace(req.Location),
		EmploymentType:      req.EmploymentType,
		RequiredSkills:      common.NormalizeList(req.RequiredSkills),
		MinExperience:       req.MinExperience,
		RateMin:             req.RateMin,
		RateMax:             req.RateMax,
		Visibility:          req.Visibility,
		Status:              StatusOpen,
		ExpiresAt:           expiresAt,
	}
	if err := s.repo.Create(ctx, j); err != nil {
		s.logger.Error("Failed to create job", zap.Error(err), zap.String("companyID", j.CompanyID.String()))
		return nil, err
	}
	s.logger.Info("Job posted",
		zap.String("jobID", j.ID.String()),
		zap.String("companyID", j.CompanyID.String()),
		zap.Time("expiresAt", j.ExpiresAt),
	)
	return j, nil
}

func (s *ServiceImplementation) UpdateJob(ctx context.Context, viewer common.Viewer, id uuid.UUID, req UpdateJobRequest) (*Job, error) {
	j, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		j.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		j.DescriptionMarkdown = *req.Description
		j.DescriptionHTML = s.RenderDescription(*req.Description)
	}
	if req.Location != nil {
		j.Location = strings.TrimSpace(*req.Location)
	}
	if req.EmploymentType != nil {
		j.EmploymentType = *req.EmploymentType
	}
	if req.RequiredSkills != nil {
		j.RequiredSkills = common.NormalizeList(req.RequiredSkills)
	}
	if req.MinExperience != nil {
		j.MinExperience = *req.MinExperience
	}
	if req.RateMin != nil {
		j.RateMin = req.RateMin
	}
	if req.RateMax != nil {
		j.RateMax = req.RateMax
	}
	if err := checkRates(j.RateMin, j.RateMax); err != nil {
		return nil, err
	}
	if req.Visibility != nil {
		j.Visibility = *req.Visibility
	}
	if req.ExpiresAt != nil {
		now := s.now()
		if !req.ExpiresAt.After(now) {
			return nil, common.ErrBadRequest.WithDetails("expires_at must be in the future.")
		}
		j.ExpiresAt = req.ExpiresAt.UTC()
		// Extending an expired posting reopens it; closed postings stay closed.
		if j.Status == StatusExpired {
			j.Status = StatusOpen
		}
	}

	if err := s.repo.Update(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *ServiceImplementation) CloseJob(ctx context.Context, viewer common.Viewer, id uuid.UUID) (*Job, error) {
	j, err := s.manageable(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if j.Status == StatusClosed {
		return j, nil
	}
	j.Status = StatusClosed
	if err := s.repo.Update(ctx, j); err != nil {
		return nil, err
	}
	s.logger.Info("Job closed", zap.String("jobID", j.ID.String()), zap.String("by", viewer.UserID.String()))
	return j, nil
}

func (s *ServiceImplementation) GetJob(ctx context.Context, viewer common.Viewer, id uuid.UUID) (*Job, error) {
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !j.CanView(viewer, s.now()) {
		return nil, common.ErrNotFound.WithDetails("Job not found.")
	}
	return j, nil
}

func (s *ServiceImplementation) ListJobs(ctx context.Context, viewer common.Viewer, query ListJobsQuery) ([]Job, *common.Pagination, error) {
	page, pageSize := common.NormalizePage(query.Page, query.PageSize)
	filter := ListFilter{
		Audiences:      AudiencesFor(viewer.Role),
		MemberOf:       viewer.CompanyID,
		OpenOnly:       true,
		Now:            s.now(),
		Search:         query.Search,
		Location:       query.Location,
		EmploymentType: query.EmploymentType,
	}
	if query.IncludeClosed {
		if viewer.IsSuperAdmin() {
			filter.OpenOnly = false
		} else {
			filter.IncludeClosedForMember = true
		}
	}
	if query.CompanyID != "" {
		companyID, err := uuid.Parse(query.CompanyID)
		if err != nil {
			return nil, nil, common.ErrBadRequest.WithDetails("Invalid company_id format.")
		}
		filter.CompanyID = &companyID
	}

	jobs, total, err := s.repo.List(ctx, filter, page, pageSize)
	if err != nil {
		s.logger.Error("Error listing jobs", zap.Error(err))
		return nil, nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, common.NewPagination(total, page, pageSize), nil
}

func (s *ServiceImplementation) ExpireJobs(ctx context.Context, now time.Time) (int, error) {
	n, err := s.repo.ExpireBefore(ctx, now.UTC())
	if err != nil {
		s.logger.Error("Failed to expire jobs", zap.Error(err))
		return 0, fmt.Errorf("expire jobs: %w", err)
	}
	if n > 0 {
		s.logger.Info("Expired job postings", zap.Int64("count", n))
	}
	return int(n), nil
}
