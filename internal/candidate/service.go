// File: internal/candidate/service.go
package candidate

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"mybench_backend/internal/common"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Indexer mirrors candidates into the search index.
type Indexer interface {
	IndexCandidate(ctx context.Context, c *Candidate) error
	RemoveCandidate(ctx context.Context, id uuid.UUID) error
}

// ContactAccess decides whether a viewer may see a candidate's contact details.
type ContactAccess interface {
	CanViewContact(ctx context.Context, viewer common.Viewer, c *Candidate) (bool, error)
}

// View is a candidate together with the viewer's contact access.
type View struct {
	Candidate      *Candidate
	ContactVisible bool
}

// Service defines the interface for candidate-related business logic.
type Service interface {
	UpsertMyProfile(ctx context.Context, viewer common.Viewer, req UpsertProfileRequest) (*Candidate, error)
	GetMyProfile(ctx context.Context, viewer common.Viewer) (*Candidate, error)
	CreateBench(ctx context.Context, viewer common.Viewer, req BenchCandidateRequest) (*Candidate, error)
	UpdateBench(ctx context.Context, viewer common.Viewer, id uuid.UUID, req BenchCandidateRequest) (*Candidate, error)
	DeleteBench(ctx context.Context, viewer common.Viewer, id uuid.UUID) error
	ListMyBench(ctx context.Context, viewer common.Viewer, page, pageSize int) ([]Candidate, *common.Pagination, error)
	GetCandidate(ctx context.Context, viewer common.Viewer, id uuid.UUID) (*View, error)
}

// ServiceImplementation implements the candidate Service interface.
type ServiceImplementation struct {
	repo   Repository
	index  Indexer
	access ContactAccess
	policy *bluemonday.Policy
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new candidate service. index may be nil when the search mirror is disabled.
func NewService(repo Repository, index Indexer, access ContactAccess, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		index:  index,
		access: access,
		policy: bluemonday.StrictPolicy(),
		logger: logger.Named("candidate_service"),
	}
}

// sanitizeText strips markup from free text and stores it as plain text.
func (s *ServiceImplementation) sanitizeText(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}

func (s *ServiceImplementation) applyProfile(c *Candidate, req ProfileRequest) {
	c.FullName = strings.TrimSpace(req.FullName)
	c.Phone = strings.TrimSpace(req.Phone)
	c.Title = s.sanitizeText(req.Title)
	c.Location = strings.TrimSpace(req.Location)
	c.Skills = common.NormalizeList(req.Skills)
	c.ExperienceYears = req.ExperienceYears
	c.Summary = s.sanitizeText(req.Summary)
	c.WorkAuthorization = strings.TrimSpace(req.WorkAuthorization)
	c.Availability = req.Availability
	c.HourlyRate = req.HourlyRate
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
}

// mirror pushes the candidate to the search index. Failures are logged, never returned.
func (s *ServiceImplementation) mirror(ctx context.Context, c *Candidate) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexCandidate(ctx, c); err != nil {
		s.logger.Warn("Failed to index candidate", zap.String("candidateID", c.ID.String()), zap.Error(err))
	}
}

func (s *ServiceImplementation) UpsertMyProfile(ctx context.Context, viewer common.Viewer, req UpsertProfileRequest) (*Candidate, error) {
	if viewer.Role != common.RoleCandidate {
		return nil, common.ErrForbidden.WithDetails("Only candidates have a personal profile.")
	}

	existing, err := s.repo.FindByUserID(ctx, viewer.UserID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		userID := viewer.UserID
		c := &Candidate{
			Source:   SourceDirect,
			UserID:   &userID,
			Email:    common.NormalizeEmail(viewer.Email),
			IsActive: true,
		}
		s.applyProfile(c, req.ProfileRequest)
		if err := s.repo.Create(ctx, c); err != nil {
			return nil, err
		}
		s.logger.Info("Direct candidate profile created", zap.String("candidateID", c.ID.String()))
		s.mirror(ctx, c)
		return c, nil
	}

	s.applyProfile(existing, req.ProfileRequest)
	existing.Email = common.NormalizeEmail(viewer.Email)
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	s.mirror(ctx, existing)
	return existing, nil
}

func (s *ServiceImplementation) GetMyProfile(ctx context.Context, viewer common.Viewer) (*Candidate, error) {
	return s.repo.FindByUserID(ctx, viewer.UserID)
}

func (s *ServiceImplementation) ensureUniqueBenchEmail(ctx context.Context, ownerID uuid.UUID, email string, exceptID uuid.UUID) error {
	dup, err := s.repo.FindBenchByOwnerAndEmail(ctx, ownerID, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	}
	if dup.ID != exceptID {
		return common.ErrConflict.WithDetails("You already have a bench candidate with this email.")
	}
	return nil
}

func (s *ServiceImplementation) CreateBench(ctx context.Context, viewer common.Viewer, req BenchCandidateRequest) (*Candidate, error) {
	if viewer.Role != common.RoleRecruiter && viewer.Role != common.RoleCompanyAdmin {
		return nil, common.ErrForbidden.WithDetails("Only recruiters can add bench candidates.")
	}
	email := common.NormalizeEmail(req.Email)
	if err := s.ensureUniqueBenchEmail(ctx, viewer.UserID, email, uuid.Nil); err != nil {
		return nil, err
	}

	ownerID := viewer.UserID
	c := &Candidate{
		Source:           SourceBench,
		OwnerRecruiterID: &ownerID,
		OwnerCompanyID:   viewer.CompanyID,
		Email:            email,
		IsPrivate:        req.IsPrivate,
		IsActive:         true,
	}
	s.applyProfile(c, req.ProfileRequest)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("Bench candidate created",
		zap.String("candidateID", c.ID.String()),
		zap.String("ownerID", ownerID.String()),
	)
	s.mirror(ctx, c)
	return c, nil
}

func (s *ServiceImplementation) ownedBench(ctx context.Context, viewer common.Viewer, id uuid.UUID) (*Candidate, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Source != SourceBench {
		return nil, common.ErrNotFound.WithDetails("Bench candidate not found.")
	}
	if !c.IsOwnedBy(viewer.UserID) && !viewer.IsSuperAdmin() {
		return nil, common.ErrForbidden.WithDetails("You do not own this bench candidate.")
	}
	return c, nil
}

func (s *ServiceImplementation) UpdateBench(ctx context.Context, viewer common.Viewer, id uuid.UUID, req BenchCandidateRequest) (*Candidate, error) {
	c, err := s.ownedBench(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	email := common.NormalizeEmail(req.Email)
	if email != c.Email {
		if err := s.ensureUniqueBenchEmail(ctx, *c.OwnerRecruiterID, email, c.ID); err != nil {
			return nil, err
		}
	}
	s.applyProfile(c, req.ProfileRequest)
	c.Email = email
	c.IsPrivate = req.IsPrivate
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.mirror(ctx, c)
	return c, nil
}

func (s *ServiceImplementation) DeleteBench(ctx context.Context, viewer common.Viewer, id uuid.UUID) error {
	c, err := s.ownedBench(ctx, viewer, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, c.ID); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.RemoveCandidate(ctx, c.ID); err != nil {
			s.logger.Warn("Failed to remove candidate from index", zap.String("candidateID", c.ID.String()), zap.Error(err))
		}
	}
	s.logger.Info("Bench candidate deleted", zap.String("candidateID", c.ID.String()))
	return nil
}

func (s *ServiceImplementation) ListMyBench(ctx context.Context, viewer common.Viewer, page, pageSize int) ([]Candidate, *common.Pagination, error) {
	page, pageSize = common.NormalizePage(page, pageSize)
	out, total, err := s.repo.ListByOwner(ctx, viewer.UserID, page, pageSize)
	if err != nil {
		return nil, nil, fmt.Errorf("list bench: %w", err)
	}
	return out, common.NewPagination(total, page, pageSize), nil
}

func (s *ServiceImplementation) GetCandidate(ctx context.Context, viewer common.Viewer, id uuid.UUID) (*View, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.VisibleTo(viewer) {
		// Hidden candidates are reported as missing so private benches do not leak.
		return nil, common.ErrNotFound.WithDetails("Candidate not found.")
	}
	visible := false
	if s.access != nil {
		visible, err = s.access.CanViewContact(ctx, viewer, c)
		if err != nil {
			return nil, fmt.Errorf("check contact access: %w", err)
		}
	}
	return &View{Candidate: c, ContactVisible: visible}, nil
}
