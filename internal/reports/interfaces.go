package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RepositoryInterface defines reporting reads
type RepositoryInterface interface {
	WalletStatement(ctx context.Context, userID uuid.UUID, from, to time.Time) (*WalletStatement, error)
	PlatformSummary(ctx context.Context, from, to time.Time) (*PlatformSummary, error)
}
