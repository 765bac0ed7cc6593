// File: internal/credit/service.go
package credit

import (
	"context"
	"errors"
	"fmt"

	"mybench_backend/internal/candidate"
	"mybench_backend/internal/common"
	"mybench_backend/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CandidateFinder loads candidates for unlock checks. candidate.Repository satisfies it.
type CandidateFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*candidate.Candidate, error)
}

// UnlockResult describes the outcome of an unlock request.
type UnlockResult struct {
	Candidate       *candidate.Candidate
	Charged         int
	Balance         int
	AlreadyUnlocked bool
}

// Service defines the interface for credit business logic.
type Service interface {
	EnsureAccount(ctx context.Context, userID uuid.UUID, signupBonus int) error
	GetBalance(ctx context.Context, viewer common.Viewer) (*BalanceResponse, error)
	ListTransactions(ctx context.Context, viewer common.Viewer, page, pageSize int) ([]CreditTransaction, *common.Pagination, error)
	Grant(ctx context.Context, actor common.Viewer, req GrantRequest) (*CreditTransaction, error)
	UnlockContact(ctx context.Context, viewer common.Viewer, candidateID uuid.UUID) (*UnlockResult, error)
	CanViewContact(ctx context.Context, viewer common.Viewer, c *candidate.Candidate) (bool, error)
	UnlockedCandidateIDs(ctx context.Context, viewer common.Viewer, candidateIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo       Repository
	candidates CandidateFinder
	cfg        *config.Config
	logger     *zap.Logger
}

var (
	_ Service                 = (*ServiceImplementation)(nil)
	_ candidate.ContactAccess = (*ServiceImplementation)(nil)
)

// NewService creates a new credit service.
func NewService(repo Repository, candidates CandidateFinder, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:       repo,
		candidates: candidates,
		cfg:        cfg,
		logger:     logger.Named("credit_service"),
	}
}

func (s *ServiceImplementation) EnsureAccount(ctx context.Context, userID uuid.UUID, signupBonus int) error {
	if signupBonus < 0 {
		signupBonus = 0
	}
	created, err := s.repo.CreateAccount(ctx, userID, signupBonus)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("Credit account opened",
			zap.String("userID", userID.String()),
			zap.Int("bonus", signupBonus),
		)
	}
	return nil
}

func (s *ServiceImplementation) GetBalance(ctx context.Context, viewer common.Viewer) (*BalanceResponse, error) {
	resp := &BalanceResponse{UserID: viewer.UserID, UnlockCost: s.cfg.ContactUnlockCost}
	account, err := s.repo.FindAccountByUserID(ctx, viewer.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return resp, nil
		}
		return nil, err
	}
	resp.Balance = account.Balance
	resp.HasAccount = true
	resp.LastUpdated = account.UpdatedAt
	return resp, nil
}

func (s *ServiceImplementation) ListTransactions(ctx context.Context, viewer common.Viewer, page, pageSize int) ([]CreditTransaction, *common.Pagination, error) {
	page, pageSize = common.NormalizePage(page, pageSize)
	entries, total, err := s.repo.ListTransactions(ctx, viewer.UserID, page, pageSize)
	if err != nil {
		s.logger.Error("Error listing credit transactions", zap.Error(err), zap.String("userID", viewer.UserID.String()))
		return nil, nil, fmt.Errorf("list credit transactions: %w", err)
	}
	return entries, common.NewPagination(total, page, pageSize), nil
}

func (s *ServiceImplementation) Grant(ctx context.Context, actor common.Viewer, req GrantRequest) (*CreditTransaction, error) {
	if !actor.IsSuperAdmin() {
		return nil, common.ErrForbidden.WithDetails("Only super admins can grant credits.")
	}
	if req.Amount <= 0 {
		return nil, common.ErrBadRequest.WithDetails("Amount must be positive.")
	}
	if req.UserID == uuid.Nil {
		return nil, common.ErrBadRequest.WithDetails("A user ID is required.")
	}
	if err := s.EnsureAccount(ctx, req.UserID, 0); err != nil {
		return nil, err
	}
	entry, err := s.repo.Grant(ctx, req.UserID, req.Amount, req.Note)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Credits granted",
		zap.String("userID", req.UserID.String()),
		zap.Int("amount", req.Amount),
		zap.String("by", actor.UserID.String()),
	)
	return entry, nil
}

// freeAccess reports whether the viewer sees contact details without spending credits.
func freeAccess(viewer common.Viewer, c *candidate.Candidate) bool {
	switch {
	case viewer.IsSuperAdmin():
		return true
	case c.UserID != nil && *c.UserID == viewer.UserID:
		return true
	case c.IsOwnedBy(viewer.UserID):
		return true
	case viewer.InCompany(c.OwnerCompanyID):
		return true
	}
	return false
}

func (s *ServiceImplementation) UnlockContact(ctx context.Context, viewer common.Viewer, candidateID uuid.UUID) (*UnlockResult, error) {
	if !common.IsHiringRole(viewer.Role) {
		return nil, common.ErrForbidden.WithDetails("Only recruiters can unlock candidate contacts.")
	}
	c, err := s.candidates.FindByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !c.VisibleTo(viewer) {
		return nil, common.ErrNotFound.WithDetails("Candidate not found.")
	}

	result := &UnlockResult{Candidate: c}
	balance := func() error {
		resp, err := s.GetBalance(ctx, viewer)
		if err != nil {
			return err
		}
		result.Balance = resp.Balance
		return nil
	}

	if freeAccess(viewer, c) {
		result.AlreadyUnlocked = true
		return result, balance()
	}

	if _, err := s.repo.FindUnlock(ctx, viewer.UserID, candidateID); err == nil {
		result.AlreadyUnlocked = true
		return result, balance()
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	_, entry, err := s.repo.UnlockContact(ctx, viewer.UserID, candidateID, s.cfg.ContactUnlockCost)
	if err != nil {
		// A concurrent request for the same pair committed first; the rollback left the balance untouched.
		if errors.Is(err, common.ErrConflict) {
			result.AlreadyUnlocked = true
			return result, balance()
		}
		if errors.Is(err, common.ErrInsufficientCredits) {
			s.logger.Info("Unlock refused for insufficient credits",
				zap.String("userID", viewer.UserID.String()),
				zap.String("candidateID", candidateID.String()),
			)
		}
		return nil, err
	}

	if entry != nil {
		result.Charged = -entry.Amount
		result.Balance = entry.BalanceAfter
	} else if err := balance(); err != nil {
		return nil, err
	}
	s.logger.Info("Candidate contact unlocked",
		zap.String("userID", viewer.UserID.String()),
		zap.String("candidateID", candidateID.String()),
		zap.Int("charged", result.Charged),
	)
	return result, nil
}

func (s *ServiceImplementation) CanViewContact(ctx context.Context, viewer common.Viewer, c *candidate.Candidate) (bool, error) {
	if freeAccess(viewer, c) {
		return true, nil
	}
	if !common.IsHiringRole(viewer.Role) {
		return false, nil
	}
	_, err := s.repo.FindUnlock(ctx, viewer.UserID, c.ID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// UnlockedCandidateIDs returns the subset of candidateIDs the viewer has paid to unlock.
// Free access is not reflected here; callers combine it with CanViewContact rules.
func (s *ServiceImplementation) UnlockedCandidateIDs(ctx context.Context, viewer common.Viewer, candidateIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	if !common.IsHiringRole(viewer.Role) {
		return map[uuid.UUID]bool{}, nil
	}
	if candidateIDs == nil {
		candidateIDs = []uuid.UUID{}
	}
	return s.repo.UnlockedCandidateIDs(ctx, viewer.UserID, candidateIDs)
}

// ContactVisible combines free access with a precomputed unlock set.
func ContactVisible(viewer common.Viewer, c *candidate.Candidate, unlocked map[uuid.UUID]bool) bool {
	return freeAccess(viewer, c) || unlocked[c.ID]
}
