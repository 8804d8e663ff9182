package withdrawals

import (
	"context"

	"github.com/google/uuid"

	"github.com/haulport/logistics-backend/internal/wallet"
)

// RepositoryInterface defines withdrawal data access operations
type RepositoryInterface interface {
	Create(ctx context.Context, w *Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*Withdrawal, error)
	Approve(ctx context.Context, id, adminID uuid.UUID) (bool, error)
	Reject(ctx context.Context, id, adminID uuid.UUID, reason string) (bool, error)
	MarkPaid(ctx context.Context, id, userID, adminID uuid.UUID, amount float64, paymentRef, note string) (*wallet.Transaction, error)
	HasDebit(ctx context.Context, id uuid.UUID) (bool, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (float64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Withdrawal, int64, error)
	ListPending(ctx context.Context, limit, offset int) ([]*Withdrawal, int64, error)
}
