// File: internal/company/service.go
package company

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mybench_backend/internal/common"
	"mybench_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// MemberDirectory is the slice of the user service that company membership needs.
type MemberDirectory interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error)
	GetUserByEmail(ctx context.Context, email string) (*shared.User, error)
	AssignCompany(ctx context.Context, userID uuid.UUID, companyID *uuid.UUID) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]shared.User, error)
}

// Service defines the interface for company-related business logic.
type Service interface {
	CreateCompany(ctx context.Context, viewer common.Viewer, req CreateCompanyRequest) (*Company, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*Company, error)
	GetCompanyBySlug(ctx context.Context, slug string) (*Company, error)
	UpdateCompany(ctx context.Context, viewer common.Viewer, id uuid.UUID, req UpdateCompanyRequest) (*Company, error)
	ListCompanies(ctx context.Context, viewer common.Viewer, query ListCompaniesQuery) ([]Company, *common.Pagination, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*Company, error)
	AddMember(ctx context.Context, viewer common.Viewer, companyID uuid.UUID, email string) (*shared.User, error)
	RemoveMember(ctx context.Context, viewer common.Viewer, companyID, userID uuid.UUID) error
	ListMembers(ctx context.Context, viewer common.Viewer, companyID uuid.UUID) ([]shared.User, error)
	EnsureCanPost(ctx context.Context, companyID uuid.UUID) (*Company, error)
}

type service struct {
	repo    Repository
	members MemberDirectory
	logger  *zap.Logger
}

// NewService creates a new company service.
func NewService(repo Repository, members MemberDirectory, logger *zap.Logger) Service {
	return &service{
		repo:    repo,
		members: members,
		logger:  logger.Named("company_service"),
	}
}

// uniqueSlug derives a slug from name and appends a counter until it is free.
func (s *service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "company"
	}
	candidate := base
	for i := 2; i < 100; i++ {
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}

func (s *service) CreateCompany(ctx context.Context, viewer common.Viewer, req CreateCompanyRequest) (*Company, error) {
	if viewer.Role != common.RoleCompanyAdmin {
		return nil, common.ErrForbidden.WithDetails("Only company admins can create companies.")
	}
	if viewer.CompanyID != nil {
		return nil, common.ErrConflict.WithDetails("You already belong to a company.")
	}

	companySlug, err := s.uniqueSlug(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	company := &Company{
		Name:            strings.TrimSpace(req.Name),
		Slug:            companySlug,
		Website:         req.Website,
		Description:     req.Description,
		Location:        req.Location,
		Status:          StatusPending,
		CreatedByUserID: viewer.UserID,
	}
	if err := s.repo.Create(ctx, company); err != nil {
		s.logger.Error("Failed to create company", zap.Error(err), zap.String("name", req.Name))
		return nil, err
	}
	if err := s.members.AssignCompany(ctx, viewer.UserID, &company.ID); err != nil {
		s.logger.Error("Failed to link creator to company", zap.Error(err), zap.String("companyID", company.ID.String()))
		return nil, fmt.Errorf("link company creator: %w", err)
	}

	s.logger.Info("Company created",
		zap.String("companyID", company.ID.String()),
		zap.String("slug", company.Slug),
		zap.String("by", viewer.UserID.String()),
	)
	return company, nil
}

func (s *service) GetCompany(ctx context.Context, id uuid.UUID) (*Company, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetCompanyBySlug(ctx context.Context, companySlug string) (*Company, error) {
	return s.repo.FindBySlug(ctx, companySlug)
}

func canManage(viewer common.Viewer, companyID uuid.UUID) bool {
	if viewer.IsSuperAdmin() {
		return true
	}
	return viewer.Role == common.RoleCompanyAdmin && viewer.InCompany(&companyID)
}

func (s *service) UpdateCompany(ctx context.Context, viewer common.Viewer, id uuid.UUID, req UpdateCompanyRequest) (*Company, error) {
	if !canManage(viewer, id) {
		return nil, common.ErrForbidden.WithDetails("You cannot edit this company.")
	}
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != company.Name {
		company.Name = strings.TrimSpace(*req.Name)
		if company.Slug, err = s.uniqueSlug(ctx, company.Name); err != nil {
			return nil, err
		}
	}
	if req.Website != nil {
		company.Website = common.StringPtr(*req.Website)
	}
	if req.Description != nil {
		company.Description = common.StringPtr(*req.Description)
	}
	if req.Location != nil {
		company.Location = common.StringPtr(*req.Location)
	}

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *service) ListCompanies(ctx context.Context, viewer common.Viewer, query ListCompaniesQuery) ([]Company, *common.Pagination, error) {
	status := query.Status
	if !viewer.IsSuperAdmin() {
		status = StatusActive
	}
	page, pageSize := common.NormalizePage(query.Page, query.PageSize)
	companies, total, err := s.repo.List(ctx, status, page, pageSize)
	if err != nil {
		s.logger.Error("Error listing companies", zap.Error(err))
		return nil, nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, common.NewPagination(total, page, pageSize), nil
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Company, error) {
	switch status {
	case StatusPending, StatusActive, StatusSuspended:
	default:
		return nil, common.ErrBadRequest.WithDetails("Unknown company status.")
	}
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	company.Status = status
	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	s.logger.Info("Company status changed", zap.String("companyID", id.String()), zap.String("status", status))
	return company, nil
}

func (s *service) AddMember(ctx context.Context, viewer common.Viewer, companyID uuid.UUID, email string) (*shared.User, error) {
	if !canManage(viewer, companyID) {
		return nil, common.ErrForbidden.WithDetails("You cannot manage members of this company.")
	}
	if _, err := s.repo.FindByID(ctx, companyID); err != nil {
		return nil, err
	}

	member, err := s.members.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound.WithDetails("No user with this email. They must sign in once before being added.")
		}
		return nil, err
	}
	if member.Role != common.RoleRecruiter && member.Role != common.RoleCompanyAdmin {
		return nil, common.ErrUnprocessableEntity.WithDetails("Only recruiters and company admins can join a company.")
	}
	if member.CompanyID != nil {
		if *member.CompanyID == companyID {
			return member, nil
		}
		return nil, common.ErrConflict.WithDetails("This user already belongs to another company.")
	}

	if err := s.members.AssignCompany(ctx, member.ID, &companyID); err != nil {
		return nil, err
	}
	member.CompanyID = &companyID
	s.logger.Info("Company member added", zap.String("companyID", companyID.String()), zap.String("userID", member.ID.String()))
	return member, nil
}

func (s *service) RemoveMember(ctx context.Context, viewer common.Viewer, companyID, userID uuid.UUID) error {
	if !canManage(viewer, companyID) {
		return common.ErrForbidden.WithDetails("You cannot manage members of this company.")
	}
	if userID == viewer.UserID {
		return common.ErrUnprocessableEntity.WithDetails("You cannot remove yourself from the company.")
	}
	member, err := s.members.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if member.CompanyID == nil || *member.CompanyID != companyID {
		return common.ErrNotFound.WithDetails("User is not a member of this company.")
	}
	return s.members.AssignCompany(ctx, userID, nil)
}

func (s *service) ListMembers(ctx context.Context, viewer common.Viewer, companyID uuid.UUID) ([]shared.User, error) {
	if !viewer.IsSuperAdmin() && !viewer.InCompany(&companyID) {
		return nil, common.ErrForbidden.WithDetails("You are not a member of this company.")
	}
	return s.members.ListByCompany(ctx, companyID)
}

// EnsureCanPost returns the company when it is active, or an error suitable for the job handlers.
func (s *service) EnsureCanPost(ctx context.Context, companyID uuid.UUID) (*Company, error) {
	company, err := s.repo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !company.IsActive() {
		return nil, common.ErrForbidden.WithDetails(fmt.Sprintf("Company is %s and cannot post jobs.", company.Status))
	}
	return company, nil
}
