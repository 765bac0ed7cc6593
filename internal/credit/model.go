// File: internal/credit/model.go
package credit

import (
	"time"

	"mybench_backend/internal/common"

	"github.com/google/uuid"
)

// TransactionType classifies ledger entries.
type TransactionType string

const (
	TypeGrant       TransactionType = "grant"
	TypeSignupBonus TransactionType = "signup_bonus"
	TypeUnlock      TransactionType = "unlock"
	TypeRefund      TransactionType = "refund"
)

// CreditAccount holds the spendable balance of one user.
type CreditAccount struct {
	common.BaseModel
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Balance int       `gorm:"not null;default:0"`
}

// TableName specifies the table name for the CreditAccount model.
func (CreditAccount) TableName() string {
	return "credit_accounts"
}

// CreditTransaction is an append-only ledger entry. Amount is signed.
type CreditTransaction struct {
	common.BaseModel
	AccountID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type         TransactionType `gorm:"type:varchar(20);not null"`
	Amount       int             `gorm:"not null"`
	BalanceAfter int             `gorm:"not null"`
	CandidateID  *uuid.UUID      `gorm:"type:uuid"`
	Note         string          `gorm:"type:varchar(255)"`
}

// TableName specifies the table name for the CreditTransaction model.
func (CreditTransaction) TableName() string {
	return "credit_transactions"
}

// ContactUnlock records that a recruiter may see a candidate's contact details.
type ContactUnlock struct {
	common.BaseModel
	RecruiterUserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_contact_unlock_pair"`
	CandidateID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_contact_unlock_pair"`
	TransactionID   *uuid.UUID `gorm:"type:uuid"`
}

// TableName specifies the table name for the ContactUnlock model.
func (ContactUnlock) TableName() string {
	return "contact_unlocks"
}

// --- DTOs ---

// GrantRequest is the body for POST /credits/grant.
type GrantRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Amount int       `json:"amount" binding:"required,min=1,max=100000"`
	Note   string    `json:"note" binding:"omitempty,max=255"`
}

// BalanceResponse is returned by GET /credits/balance.
type BalanceResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Balance     int       `json:"balance"`
	UnlockCost  int       `json:"unlock_cost"`
	HasAccount  bool      `json:"has_account"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// TransactionResponse is a ledger entry as returned by the API.
type TransactionResponse struct {
	ID           uuid.UUID       `json:"id"`
	Type         TransactionType `json:"type"`
	Amount       int             `json:"amount"`
	BalanceAfter int             `json:"balance_after"`
	CandidateID  *uuid.UUID      `json:"candidate_id,omitempty"`
	Note         string          `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToTransactionResponse converts a ledger entry to its API form.
func ToTransactionResponse(t *CreditTransaction) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID,
		Type:         t.Type,
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		CandidateID:  t.CandidateID,
		Note:         t.Note,
		CreatedAt:    t.CreatedAt,
	}
}
