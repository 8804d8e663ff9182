package withdrawals

import (
	"time"

	"github.com/google/uuid"
)

// Status is the withdrawal lifecycle state. Legal transitions:
// pending -> approved | rejected, and pending|approved -> paid.
// rejected and paid are terminal. Only the transition to paid debits the
// wallet ledger.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusPaid     Status = "paid"
)

// ReviewAction is an admin's decision on a withdrawal
type ReviewAction string

const (
	ActionApprove  ReviewAction = "approve"
	ActionReject   ReviewAction = "reject"
	ActionMarkPaid ReviewAction = "mark_paid"
)

// Withdrawal is a driver's payout request. The balance is checked but not
// reserved at request time; the payout-time check is authoritative.
type Withdrawal struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	Amount          float64    `json:"amount" db:"amount"`
	BankName        string     `json:"bank_name" db:"bank_name"`
	AccountName     string     `json:"account_name" db:"account_name"`
	AccountNumber   string     `json:"account_number" db:"account_number"`
	Status          Status     `json:"status" db:"status"`
	RejectionReason *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	PaymentRef      *string    `json:"payment_ref,omitempty" db:"payment_ref"`
	ReviewedBy      *uuid.UUID `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	PaidAt          *time.Time `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// RequestWithdrawal creates a payout request
type RequestWithdrawal struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	BankName      string  `json:"bank_name" binding:"required"`
	AccountName   string  `json:"account_name" binding:"required"`
	AccountNumber string  `json:"account_number" binding:"required,min=6,max=20"`
}

// ReviewRequest carries an admin's review decision
type ReviewRequest struct {
	Action          ReviewAction `json:"action" binding:"required,oneof=approve reject mark_paid"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	PaymentRef      string       `json:"payment_ref,omitempty"`
}
