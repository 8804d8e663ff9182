package reports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/haulport/logistics-backend/pkg/common"
)

// Periods longer than this are rejected to keep statement queries bounded
const maxPeriodDays = 92

// Service handles reporting queries
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new reports service
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

func validatePeriod(from, to time.Time) error {
	if !to.After(from) {
		return common.NewBadRequestError("period end must be after start", nil)
	}
	if to.Sub(from) > maxPeriodDays*24*time.Hour {
		return common.NewBadRequestError("period may not exceed 92 days", nil)
	}
	return nil
}

// WalletStatement builds a period statement for a user
func (s *Service) WalletStatement(ctx context.Context, userID uuid.UUID, from, to time.Time) (*WalletStatement, error) {
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}
	stmt, err := s.repo.WalletStatement(ctx, userID, from, to)
	if err != nil {
		return nil, common.NewInternalServerError("failed to build wallet statement")
	}
	return stmt, nil
}

// PlatformSummary aggregates marketplace activity for admins
func (s *Service) PlatformSummary(ctx context.Context, from, to time.Time) (*PlatformSummary, error) {
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}
	summary, err := s.repo.PlatformSummary(ctx, from, to)
	if err != nil {
		return nil, common.NewInternalServerError("failed to build platform summary")
	}
	return summary, nil
}
