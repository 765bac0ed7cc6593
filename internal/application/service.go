// File: internal/application/service.go
package application

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"mybench_backend/internal/candidate"
	"mybench_backend/internal/common"
	"mybench_backend/internal/job"
	"mybench_backend/internal/notification"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// JobFinder loads jobs without viewer checks. job.Repository satisfies it.
type JobFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*job.Job, error)
}

// CandidateFinder loads candidate profiles. candidate.Repository satisfies it.
type CandidateFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*candidate.Candidate, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]candidate.Candidate, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*candidate.Candidate, error)
}

// ContactChecker reports whether a recruiter may work with a candidate's contact details.
type ContactChecker interface {
	CanViewContact(ctx context.Context, viewer common.Viewer, c *candidate.Candidate) (bool, error)
}

// Notifier delivers in-app notifications. notification.Service satisfies it.
type Notifier interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, notifType notification.NotificationType, message string, relatedEntityID *uuid.UUID) (*notification.Notification, error)
}

// Service defines the interface for application business logic.
type Service interface {
	Apply(ctx context.Context, viewer common.Viewer, jobID uuid.UUID, req ApplyRequest) (*Application, error)
	Submit(ctx context.Context, viewer common.Viewer, jobID uuid.UUID, req SubmitRequest) (*Application, error)
	UpdateStatus(ctx context.Context, viewer common.Viewer, id uuid.UUID, status Status) (*Application, error)
	Withdraw(ctx context.Context, viewer common.Viewer, id uuid.UUID) (*Application, error)
	ListForJob(ctx context.Context, viewer common.Viewer, jobID uuid.UUID, query ListQuery) ([]Entry, *common.Pagination, error)
	ListMine(ctx context.Context, viewer common.Viewer, query ListQuery) ([]Entry, *common.Pagination, error)
}

// ServiceImplementation implements the application Service interface.
type ServiceImplementation struct {
	repo       Repository
	jobs       JobFinder
	candidates CandidateFinder
	contacts   ContactChecker
	notifier   Notifier
	policy     *bluemonday.Policy
	now        func() time.Time
	logger     *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new application service.
func NewService(repo Repository, jobs JobFinder, candidates CandidateFinder, contacts ContactChecker, notifier Notifier, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:       repo,
		jobs:       jobs,
		candidates: candidates,
		contacts:   contacts,
		notifier:   notifier,
		policy:     bluemonday.StrictPolicy(),
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.Named("application_service"),
	}
}

func (s *ServiceImplementation) sanitize(note string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(note)))
}

// openJob loads a job the viewer can see and that still accepts applications.
func (s *ServiceImplementation) openJob(ctx context.Context, viewer common.Viewer, jobID uuid.UUID) (*job.Job, error) {
	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !j.CanView(viewer, now) {
		return nil, common.ErrNotFound.WithDetails("Job not found.")
	}
	if !j.IsOpen(now) || !j.VisibleToAudience(viewer.Role) {
		return nil, common.ErrBadRequest.WithDetails("This job is not accepting applications.")
	}
	return j, nil
}

func (s *ServiceImplementation) notify(ctx context.Context, userID uuid.UUID, kind notification.NotificationType, message string, related uuid.UUID) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.CreateNotification(ctx, userID, kind, message, &related); err != nil {
		s.logger.Warn("Failed to send notification",
			zap.Error(err),
			zap.String("userID", userID.String()),
			zap.String("type", string(kind)),
		)
	}
}

func (s *ServiceImplementation) create(ctx context.Context, j *job.Job, c *candidate.Candidate, submitter uuid.UUID, channel Channel, note string) (*Application, error) {
	a := &Application{
		JobID:             j.ID,
		CandidateID:       c.ID,
		CompanyID:         j.CompanyID,
		SubmittedByUserID: submitter,
		Channel:           channel,
		Status:            StatusApplied,
		CoverNote:         s.sanitize(note),
		StatusChangedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if !errors.Is(err, common.ErrConflict) {
			s.logger.Error("Failed to create application", zap.Error(err), zap.String("jobID", j.ID.String()))
		}
		return nil, err
	}
	s.logger.Info("Application received",
		zap.String("applicationID", a.ID.String()),
		zap.String("jobID", j.ID.String()),
		zap.String("channel", string(channel)),
	)
	s.notify(ctx, j.PostedByUserID, notification.ApplicationReceived,
		fmt.Sprintf("%s applied to %s.", c.FullName, j.Title), a.ID)
	return a, nil
}

func (s *ServiceImplementation) Apply(ctx context.Context, viewer common.Viewer, jobID uuid.UUID, req ApplyRequest) (*Application, error) {
	if viewer.Role != common.RoleCandidate {
		return nil, common.ErrForbidden.WithDetails("Only candidates can apply to jobs.")
	}
	profile, err := s.candidates.FindByUserID(ctx, viewer.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrBadRequest.WithDetails("Create your candidate profile before applying.")
		}
		return nil, err
	}
	if !profile.IsActive {
		return nil, common.ErrBadRequest.WithDetails("Your candidate profile is inactive.")
	}
	j, err := s.openJob(ctx, viewer, jobID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, j, profile, viewer.UserID, ChannelDirect, req.CoverNote)
}

func (s *ServiceImplementation) Submit(ctx context.Context, viewer common.Viewer, jobID uuid.UUID, req SubmitRequest) (*Application, error) {
	if viewer.Role != common.RoleRecruiter && viewer.Role != common.RoleCompanyAdmin {
		return nil, common.ErrForbidden.WithDetails("Only recruiters can submit candidates.")
	}
	candidateID, err := uuid.Parse(req.CandidateID)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("Invalid candidate_id.")
	}
	c, err := s.candidates.FindByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !c.VisibleTo(viewer) {
		return nil, common.ErrNotFound.WithDetails("Candidate not found.")
	}
	if !c.IsActive {
		return nil, common.ErrBadRequest.WithDetails("This candidate is not active.")
	}
	allowed, err := s.contacts.CanViewContact(ctx, viewer, c)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, common.ErrForbidden.WithDetails("Unlock this candidate's contact details before submitting them.")
	}
	j, err := s.openJob(ctx, viewer, jobID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, j, c, viewer.UserID, ChannelRecruiter, req.CoverNote)
}

func canSee(viewer common.Viewer, a *Application) bool {
	return viewer.IsSuperAdmin() || a.SubmittedByUserID == viewer.UserID || viewer.InCompany(&a.CompanyID)
}

func (s *ServiceImplementation) UpdateStatus(ctx context.Context, viewer common.Viewer, id uuid.UUID, status Status) (*Application, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSee(viewer, a) {
		return nil, common.ErrNotFound.WithDetails("Application not found.")
	}
	if !viewer.IsSuperAdmin() && !viewer.InCompany(&a.CompanyID) {
		return nil, common.ErrForbidden.WithDetails("Only the hiring company can change an application's status.")
	}
	if !a.Status.CanMoveTo(status) {
		return nil, common.ErrConflict.WithDetails(fmt.Sprintf("Cannot move an application from %s to %s.", a.Status, status))
	}

	previous := a.Status
	a.Status = status
	a.StatusChangedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		s.logger.Error("Failed to update application status", zap.Error(err), zap.String("applicationID", id.String()))
		return nil, err
	}
	s.logger.Info("Application status changed",
		zap.String("applicationID", id.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
		zap.String("by", viewer.UserID.String()),
	)

	title := "a job"
	if j, err := s.jobs.FindByID(ctx, a.JobID); err == nil {
		title = j.Title
	}
	s.notify(ctx, a.SubmittedByUserID, notification.ApplicationStatusChanged,
		fmt.Sprintf("Your application for %s is now %s.", title, status), a.ID)
	return a, nil
}

func (s *ServiceImplementation) Withdraw(ctx context.Context, viewer common.Viewer, id uuid.UUID) (*Application, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSee(viewer, a) {
		return nil, common.ErrNotFound.WithDetails("Application not found.")
	}
	if a.SubmittedByUserID != viewer.UserID {
		return nil, common.ErrForbidden.WithDetails("Only the submitter can withdraw an application.")
	}
	if a.Status.IsTerminal() {
		return nil, common.ErrConflict.WithDetails(fmt.Sprintf("An application that is %s cannot be withdrawn.", a.Status))
	}

	a.Status = StatusWithdrawn
	a.StatusChangedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		s.logger.Error("Failed to withdraw application", zap.Error(err), zap.String("applicationID", id.String()))
		return nil, err
	}
	if j, err := s.jobs.FindByID(ctx, a.JobID); err == nil {
		s.notify(ctx, j.PostedByUserID, notification.ApplicationWithdrawn,
			fmt.Sprintf("An application for %s was withdrawn.", j.Title), a.ID)
	}
	return a, nil
}

// withCandidates pairs applications with their candidate records.
func (s *ServiceImplementation) withCandidates(ctx context.Context, apps []Application) ([]Entry, error) {
	ids := make([]uuid.UUID, 0, len(apps))
	for i := range apps {
		ids = append(ids, apps[i].CandidateID)
	}
	found, err := s.candidates.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load applicants: %w", err)
	}
	byID := make(map[uuid.UUID]*candidate.Candidate, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	out := make([]Entry, 0, len(apps))
	for i := range apps {
		out = append(out, Entry{Application: apps[i], Candidate: byID[apps[i].CandidateID]})
	}
	return out, nil
}

func (s *ServiceImplementation) ListForJob(ctx context.Context, viewer common.Viewer, jobID uuid.UUID, query ListQuery) ([]Entry, *common.Pagination, error) {
	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if !viewer.IsSuperAdmin() && !viewer.InCompany(&j.CompanyID) {
		if j.CanView(viewer, s.now()) {
			return nil, nil, common.ErrForbidden.WithDetails("Only the hiring company can view applications.")
		}
		return nil, nil, common.ErrNotFound.WithDetails("Job not found.")
	}
	page, pageSize := common.NormalizePage(query.Page, query.PageSize)
	apps, total, err := s.repo.ListByJob(ctx, jobID, query.Status, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to list applications", zap.Error(err), zap.String("jobID", jobID.String()))
		return nil, nil, fmt.Errorf("list applications: %w", err)
	}
	entries, err := s.withCandidates(ctx, apps)
	if err != nil {
		return nil, nil, err
	}
	return entries, common.NewPagination(total, page, pageSize), nil
}

func (s *ServiceImplementation) ListMine(ctx context.Context, viewer common.Viewer, query ListQuery) ([]Entry, *common.Pagination, error) {
	page, pageSize := common.NormalizePage(query.Page, query.PageSize)
	apps, total, err := s.repo.ListBySubmitter(ctx, viewer.UserID, query.Status, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to list own applications", zap.Error(err), zap.String("userID", viewer.UserID.String()))
		return nil, nil, fmt.Errorf("list applications: %w", err)
	}
	entries, err := s.withCandidates(ctx, apps)
	if err != nil {
		return nil, nil, err
	}
	return entries, common.NewPagination(total, page, pageSize), nil
}
