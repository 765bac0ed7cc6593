package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mybench_backend/internal/common"
	"mybench_backend/internal/config"
	"mybench_backend/internal/shared"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreditProvisioner opens credit accounts for users who can spend credits.
type CreditProvisioner interface {
	EnsureAccount(ctx context.Context, userID uuid.UUID, signupBonus int) error
}

// Service defines the user operations exposed to handlers and other domain packages.
type Service interface {
	shared.Service
	GetUserByEmail(ctx context.Context, email string) (*shared.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*shared.User, error)
	ListUsers(ctx context.Context, query ListUsersQuery) ([]shared.User, *common.Pagination, error)
	UpdateRole(ctx context.Context, actor common.Viewer, id uuid.UUID, role string) (*shared.User, error)
	SetActive(ctx context.Context, actor common.Viewer, id uuid.UUID, active bool) (*shared.User, error)
	AssignCompany(ctx context.Context, userID uuid.UUID, companyID *uuid.UUID) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]shared.User, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo    Repository
	credits CreditProvisioner
	cfg     *config.Config
	logger  *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(repo Repository, credits CreditProvisioner, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:    repo,
		credits: credits,
		cfg:     cfg,
		logger:  logger.Named("user_service"),
	}
}

func (s *ServiceImplementation) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error("Error finding user by ID", zap.Error(err), zap.String("userID", id.String()))
		}
		return nil, err
	}
	return DBToShared(dbUser), nil
}

func (s *ServiceImplementation) GetUserByEmail(ctx context.Context, email string) (*shared.User, error) {
	dbUser, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return DBToShared(dbUser), nil
}

func (s *ServiceImplementation) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*shared.User, error) {
	dbUser, err := s.repo.FindByFirebaseUID(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}
	return DBToShared(dbUser), nil
}

// claimsProfile is the subset of Firebase token claims a user record is built from.
type claimsProfile struct {
	Email      string
	FirstName  string
	LastName   string
	PictureURL string
	Role       string
}

func profileFromToken(token *firebaseauth.Token) claimsProfile {
	var p claimsProfile
	claimString := func(key string) string {
		if v, ok := token.Claims[key].(string); ok {
			return strings.TrimSpace(v)
		}
		return ""
	}
	p.Email = common.NormalizeEmail(claimString("email"))
	p.PictureURL = claimString("picture")
	p.Role = claimString("role")
	if name := claimString("name"); name != "" {
		parts := strings.SplitN(name, " ", 2)
		p.FirstName = parts[0]
		if len(parts) > 1 {
			p.LastName = strings.TrimSpace(parts[1])
		}
	}
	return p
}

// initialRole decides the role of a newly provisioned account.
func (s *ServiceImplementation) initialRole(p claimsProfile) string {
	if s.cfg.IsSuperAdminEmail(p.Email) {
		return common.RoleSuperAdmin
	}
	switch p.Role {
	case common.RoleCandidate, common.RoleRecruiter, common.RoleCompanyAdmin:
		return p.Role
	}
	return common.RoleCandidate
}

// GetOrCreateUserFromFirebaseClaims resolves the local account for a verified token,
// creating it on first sign-in.
func (s *ServiceImplementation) GetOrCreateUserFromFirebaseClaims(ctx context.Context, token *firebaseauth.Token) (*shared.User, bool, error) {
	if token == nil || token.UID == "" {
		return nil, false, common.ErrUnauthorized.WithDetails("Firebase token is missing a UID.")
	}
	profile := profileFromToken(token)
	now := time.Now()

	dbUser, err := s.repo.FindByFirebaseUID(ctx, token.UID)
	if err == nil {
		if profile.Email != "" {
			if err := s.claimEmail(ctx, dbUser, profile.Email); err != nil {
				return nil, false, err
			}
		}
		if dbUser.FirstName == nil && profile.FirstName != "" {
			dbUser.FirstName = common.StringPtr(profile.FirstName)
		}
		if dbUser.LastName == nil && profile.LastName != "" {
			dbUser.LastName = common.StringPtr(profile.LastName)
		}
		if profile.PictureURL != "" {
			dbUser.ProfilePictureURL = common.StringPtr(profile.PictureURL)
		}
		if dbUser.Role != common.RoleSuperAdmin && s.cfg.IsSuperAdminEmail(dbUser.EmailValue()) {
			s.logger.Info("Promoting configured super admin", zap.String("userID", dbUser.ID.String()))
			dbUser.Role = common.RoleSuperAdmin
		}
		dbUser.LastLoginAt = &now
		if err := s.repo.Update(ctx, dbUser); err != nil {
			s.logger.Error("Failed to refresh user from Firebase claims", zap.Error(err), zap.String("userID", dbUser.ID.String()))
			return nil, false, err
		}
		// Retries a signup bonus that failed on first sign-in.
		if err := s.provisionCredits(ctx, dbUser.ID, dbUser.Role); err != nil {
			return nil, false, err
		}
		return DBToShared(dbUser), false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("Error finding user by Firebase UID", zap.Error(err), zap.String("uid", token.UID))
		return nil, false, err
	}

	if profile.Email != "" {
		existing, emailErr := s.repo.FindByEmail(ctx, profile.Email)
		if emailErr == nil && existing.FirebaseUID != token.UID {
			s.logger.Warn("Email already belongs to another account",
				zap.String("existingUserID", existing.ID.String()),
				zap.String("uid", token.UID),
			)
			return nil, false, common.ErrConflict.WithDetails("An account with this email already exists.")
		}
		if emailErr != nil && !errors.Is(emailErr, common.ErrNotFound) {
			return nil, false, emailErr
		}
	}

	newUser := &User{
		FirebaseUID:       token.UID,
		FirstName:         common.StringPtr(profile.FirstName),
		LastName:          common.StringPtr(profile.LastName),
		ProfilePictureURL: common.StringPtr(profile.PictureURL),
		Role:              s.initialRole(profile),
		IsActive:          true,
		LastLoginAt:       &now,
	}
	if profile.Email != "" {
		email := profile.Email
		newUser.Email = &email
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		s.logger.Error("Failed to create user from Firebase claims", zap.Error(err), zap.String("uid", token.UID))
		return nil, false, err
	}

	if err := s.provisionCredits(ctx, newUser.ID, newUser.Role); err != nil {
		return nil, false, err
	}

	s.logger.Info("New user provisioned",
		zap.String("userID", newUser.ID.String()),
		zap.String("role", newUser.Role),
	)
	return DBToShared(newUser), true, nil
}

// claimEmail moves the token's email onto an existing account unless another
// account already holds it, in which case the stored email is kept.
func (s *ServiceImplementation) claimEmail(ctx context.Context, dbUser *User, email string) error {
	if dbUser.Email != nil && *dbUser.Email == email {
		return nil
	}
	owner, err := s.repo.FindByEmail(ctx, email)
	if err == nil && owner.ID != dbUser.ID {
		s.logger.Warn("Token email belongs to another account, keeping stored email",
			zap.String("userID", dbUser.ID.String()),
			zap.String("existingUserID", owner.ID.String()),
		)
		return nil
	}
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	dbUser.Email = &email
	return nil
}

func (s *ServiceImplementation) provisionCredits(ctx context.Context, userID uuid.UUID, role string) error {
	if s.credits == nil || (role != common.RoleRecruiter && role != common.RoleCompanyAdmin) {
		return nil
	}
	if err := s.credits.EnsureAccount(ctx, userID, s.cfg.SignupBonusCredits); err != nil {
		s.logger.Error("Failed to open credit account", zap.Error(err), zap.String("userID", userID.String()))
		return fmt.Errorf("open credit account: %w", err)
	}
	return nil
}

func (s *ServiceImplementation) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FirstName != nil {
		dbUser.FirstName = common.StringPtr(*req.FirstName)
	}
	if req.LastName != nil {
		dbUser.LastName = common.StringPtr(*req.LastName)
	}
	if req.ProfilePictureURL != nil {
		dbUser.ProfilePictureURL = common.StringPtr(*req.ProfilePictureURL)
	}
	if err := s.repo.Update(ctx, dbUser); err != nil {
		return nil, err
	}
	return DBToShared(dbUser), nil
}

func (s *ServiceImplementation) ListUsers(ctx context.Context, query ListUsersQuery) ([]shared.User, *common.Pagination, error) {
	page, pageSize := common.NormalizePage(query.Page, query.PageSize)
	users, total, err := s.repo.List(ctx, query.Role, page, pageSize)
	if err != nil {
		s.logger.Error("Error listing users", zap.Error(err))
		return nil, nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]shared.User, 0, len(users))
	for i := range users {
		out = append(out, *DBToShared(&users[i]))
	}
	return out, common.NewPagination(total, page, pageSize), nil
}

func (s *ServiceImplementation) UpdateRole(ctx context.Context, actor common.Viewer, id uuid.UUID, role string) (*shared.User, error) {
	if !common.IsValidRole(role) {
		return nil, common.ErrBadRequest.WithDetails("Unknown role.")
	}
	if actor.UserID == id && role != common.RoleSuperAdmin {
		return nil, common.ErrForbidden.WithDetails("Super admins cannot demote themselves.")
	}
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dbUser.Role = role
	if role == common.RoleCandidate {
		dbUser.CompanyID = nil
	}
	if err := s.repo.Update(ctx, dbUser); err != nil {
		return nil, err
	}
	if err := s.provisionCredits(ctx, dbUser.ID, role); err != nil {
		return nil, err
	}
	s.logger.Info("User role changed",
		zap.String("userID", id.String()),
		zap.String("role", role),
		zap.String("by", actor.UserID.String()),
	)
	return DBToShared(dbUser), nil
}

func (s *ServiceImplementation) SetActive(ctx context.Context, actor common.Viewer, id uuid.UUID, active bool) (*shared.User, error) {
	if actor.UserID == id && !active {
		return nil, common.ErrForbidden.WithDetails("You cannot deactivate your own account.")
	}
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dbUser.IsActive = active
	if err := s.repo.Update(ctx, dbUser); err != nil {
		return nil, err
	}
	return DBToShared(dbUser), nil
}

func (s *ServiceImplementation) AssignCompany(ctx context.Context, userID uuid.UUID, companyID *uuid.UUID) error {
	return s.repo.SetCompany(ctx, userID, companyID)
}

func (s *ServiceImplementation) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]shared.User, error) {
	users, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list company members: %w", err)
	}
	out := make([]shared.User, 0, len(users))
	for i := range users {
		out = append(out, *DBToShared(&users[i]))
	}
	return out, nil
}
