package wallet

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the read-side wallet operations the service
// depends on. Ledger mutations (CreditTx/DebitTx) are invoked by the order
// and withdrawal repositories inside their own transactions.
type RepositoryInterface interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (float64, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, int64, error)
	CheckConsistency(ctx context.Context, userID uuid.UUID) (*ConsistencyReport, error)
}
