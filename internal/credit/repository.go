// File: internal/credit/repository.go
package credit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mybench_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for credit data operations.
type Repository interface {
	// CreateAccount opens an account with an opening bonus. It reports false when the
	// account already existed, in which case nothing is written.
	CreateAccount(ctx context.Context, userID uuid.UUID, bonus int) (bool, error)
	FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*CreditAccount, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]CreditTransaction, int64, error)
	Grant(ctx context.Context, userID uuid.UUID, amount int, note string) (*CreditTransaction, error)
	FindUnlock(ctx context.Context, recruiterID, candidateID uuid.UUID) (*ContactUnlock, error)
	// UnlockContact charges cost and records the unlock in one transaction.
	UnlockContact(ctx context.Context, recruiterID, candidateID uuid.UUID, cost int) (*ContactUnlock, *CreditTransaction, error)
	UnlockedCandidateIDs(ctx context.Context, recruiterID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM credit repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func (r *gormRepository) CreateAccount(ctx context.Context, userID uuid.UUID, bonus int) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing CreditAccount
		err := tx.Where("user_id = ?", userID).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		account := CreditAccount{UserID: userID, Balance: bonus}
		if err := tx.Create(&account).Error; err != nil {
			return err
		}
		if bonus > 0 {
			entry := CreditTransaction{
				AccountID:    account.ID,
				UserID:       userID,
				Type:         TypeSignupBonus,
				Amount:       bonus,
				BalanceAfter: bonus,
				Note:         "Signup bonus",
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		created = true
		return nil
	})
	if err != nil {
		// A concurrent first login created the account first.
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create credit account: %w", err)
	}
	return created, nil
}

func (r *gormRepository) FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*CreditAccount, error) {
	var account CreditAccount
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Credit account not found.")
		}
		return nil, err
	}
	return &account, nil
}

func (r *gormRepository) ListTransactions(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]CreditTransaction, int64, error) {
	var (
		entries []CreditTransaction
		total   int64
	)
	query := r.db.WithContext(ctx).Model(&CreditTransaction{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&entries).Error
	return entries, total, err
}

// lockAccount reads the account row FOR UPDATE inside tx.
func lockAccount(tx *gorm.DB, userID uuid.UUID) (*CreditAccount, error) {
	var account CreditAccount
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *gormRepository) Grant(ctx context.Context, userID uuid.UUID, amount int, note string) (*CreditTransaction, error) {
	var entry CreditTransaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound.WithDetails("Credit account not found.")
			}
			return err
		}
		if err := tx.Model(&CreditAccount{}).Where("id = ?", account.ID).
			Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return err
		}
		entry = CreditTransaction{
			AccountID:    account.ID,
			UserID:       userID,
			Type:         TypeGrant,
			Amount:       amount,
			BalanceAfter: account.Balance + amount,
			Note:         note,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *gormRepository) FindUnlock(ctx context.Context, recruiterID, candidateID uuid.UUID) (*ContactUnlock, error) {
	var unlock ContactUnlock
	err := r.db.WithContext(ctx).
		Where("recruiter_user_id = ? AND candidate_id = ?", recruiterID, candidateID).
		First(&unlock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Contact has not been unlocked.")
		}
		return nil, err
	}
	return &unlock, nil
}

func (r *gormRepository) UnlockContact(ctx context.Context, recruiterID, candidateID uuid.UUID, cost int) (*ContactUnlock, *CreditTransaction, error) {
	var (
		unlock ContactUnlock
		entry  *CreditTransaction
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx, recruiterID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrInsufficientCredits.WithDetails("No credit account is open for this user.")
			}
			return err
		}

		if cost > 0 {
			res := tx.Model(&CreditAccount{}).
				Where("id = ? AND balance >= ?", account.ID, cost).
				Update("balance", gorm.Expr("balance - ?", cost))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return common.ErrInsufficientCredits.WithDetails(
					fmt.Sprintf("Unlocking contact details costs %d credits; balance is %d.", cost, account.Balance))
			}
			entry = &CreditTransaction{
				AccountID:    account.ID,
				UserID:       recruiterID,
				Type:         TypeUnlock,
				Amount:       -cost,
				BalanceAfter: account.Balance - cost,
				CandidateID:  &candidateID,
				Note:         "Contact unlock",
			}
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}

		unlock = ContactUnlock{RecruiterUserID: recruiterID, CandidateID: candidateID}
		if entry != nil {
			unlock.TransactionID = &entry.ID
		}
		if err := tx.Create(&unlock).Error; err != nil {
			if isUniqueViolation(err) {
				return common.ErrConflict.WithDetails("Contact already unlocked.")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &unlock, entry, nil
}

func (r *gormRepository) UnlockedCandidateIDs(ctx context.Context, recruiterID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool)
	query := r.db.WithContext(ctx).Model(&ContactUnlock{}).Where("recruiter_user_id = ?", recruiterID)
	if candidateIDs != nil {
		if len(candidateIDs) == 0 {
			return out, nil
		}
		query = query.Where("candidate_id IN ?", candidateIDs)
	}
	var ids []uuid.UUID
	if err := query.Pluck("candidate_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
