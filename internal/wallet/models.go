package wallet

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType distinguishes credits from debits
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// Transaction is an immutable ledger entry. Exactly one transaction may
// reference a given order or withdrawal; the unique constraints on those
// columns are what prevent double-crediting and double-debiting.
type Transaction struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
	Type          TransactionType `json:"type" db:"type"`
	Amount        float64         `json:"amount" db:"amount"`
	BalanceBefore float64         `json:"balance_before" db:"balance_before"`
	BalanceAfter  float64         `json:"balance_after" db:"balance_after"`
	OrderID       *uuid.UUID      `json:"order_id,omitempty" db:"order_id"`
	WithdrawalID  *uuid.UUID      `json:"withdrawal_id,omitempty" db:"withdrawal_id"`
	Note          string          `json:"note" db:"note"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// Balance is a user's current wallet state
type Balance struct {
	UserID   uuid.UUID `json:"user_id"`
	Balance  float64   `json:"balance"`
	Currency string    `json:"currency"`
}

// ConsistencyReport compares the denormalized balance against the ledger
type ConsistencyReport struct {
	UserID           uuid.UUID `json:"user_id"`
	WalletBalance    float64   `json:"wallet_balance"`
	LedgerSum        float64   `json:"ledger_sum"`
	LastBalanceAfter float64   `json:"last_balance_after"`
	Consistent       bool      `json:"consistent"`
}
