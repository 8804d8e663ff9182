package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/haulport/logistics-backend/pkg/common"
	"github.com/haulport/logistics-backend/pkg/config"
)

// Service exposes wallet reads. All balance-affecting writes go through the
// ledger inside order-completion and withdrawal-payout transactions.
type Service struct {
	repo     RepositoryInterface
	currency string
}

// NewService creates a new wallet service
func NewService(repo RepositoryInterface, cfg *config.BusinessConfig) *Service {
	currency := "NGN"
	if cfg != nil && cfg.Currency != "" {
		currency = cfg.Currency
	}
	return &Service{repo: repo, currency: currency}
}

// GetBalance returns the user's current wallet balance
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, common.NewNotFoundError("wallet not found", err)
	}
	return &Balance{UserID: userID, Balance: balance, Currency: s.currency}, nil
}

// GetTransactions returns a page of the user's ledger entries
func (s *Service) GetTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, int64, error) {
	transactions, total, err := s.repo.ListTransactions(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to list wallet transactions")
	}
	return transactions, total, nil
}

// CheckConsistency verifies the denormalized balance against the ledger.
// Admin-facing; a false result indicates a bug, not a user error.
func (s *Service) CheckConsistency(ctx context.Context, userID uuid.UUID) (*ConsistencyReport, error) {
	report, err := s.repo.CheckConsistency(ctx, userID)
	if err != nil {
		return nil, common.NewNotFoundError("user not found", err)
	}
	return report, nil
}
