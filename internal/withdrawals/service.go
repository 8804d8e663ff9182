package withdrawals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/haulport/logistics-backend/internal/events"
	"github.com/haulport/logistics-backend/internal/settlement"
	"github.com/haulport/logistics-backend/internal/wallet"
	"github.com/haulport/logistics-backend/pkg/common"
	"github.com/haulport/logistics-backend/pkg/logger"
)

// Service handles withdrawal business logic
type Service struct {
	repo      RepositoryInterface
	publisher events.Publisher
}

// NewService creates a new withdrawal service
func NewService(repo RepositoryInterface, publisher events.Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Request creates a pending withdrawal after a soft balance check. The
// check is advisory only: credits and payouts can land between request
// and review, so the hard check at payout time is the one that counts.
func (s *Service) Request(ctx context.Context, userID uuid.UUID, req *RequestWithdrawal) (*Withdrawal, error) {
	amount := settlement.Round2(req.Amount)
	if amount <= 0 {
		return nil, common.NewBadRequestError("withdrawal amount must be positive", nil)
	}

	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to check wallet balance")
	}
	if balance < amount {
		return nil, common.NewInsufficientFundsError(
			fmt.Sprintf("wallet balance %.2f is less than requested amount %.2f", balance, amount))
	}

	now := time.Now()
	w := &Withdrawal{
		ID:            uuid.New(),
		UserID:        userID,
		Amount:        amount,
		BankName:      req.BankName,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, common.NewInternalServerError("failed to create withdrawal")
	}

	logger.WithContext(ctx).Info("Withdrawal requested",
		zap.String("withdrawal_id", w.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("amount", amount),
	)
	return w, nil
}

// Review applies an admin decision to a withdrawal
func (s *Service) Review(ctx context.Context, id, adminID uuid.UUID, req *ReviewRequest) (*Withdrawal, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, common.NewInternalServerError("failed to get withdrawal")
	}
	if w == nil {
		return nil, common.NewNotFoundError("withdrawal not found", nil)
	}

	switch req.Action {
	case ActionApprove:
		return s.approve(ctx, w, adminID)
	case ActionReject:
		return s.reject(ctx, w, adminID, req.RejectionReason)
	case ActionMarkPaid:
		return s.markPaid(ctx, w, adminID, req.PaymentRef)
	default:
		return nil, common.NewBadRequestError("unknown review action", nil)
	}
}

func (s *Service) approve(ctx context.Context, w *Withdrawal, adminID uuid.UUID) (*Withdrawal, error) {
	ok, err := s.repo.Approve(ctx, w.ID, adminID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to approve withdrawal")
	}
	if !ok {
		return nil, common.NewInvalidStateError(
			fmt.Sprintf("withdrawal in status %s cannot be approved", w.Status))
	}
	return s.reload(ctx, w.ID)
}

func (s *Service) reject(ctx context.Context, w *Withdrawal, adminID uuid.UUID, reason string) (*Withdrawal, error) {
	if reason == "" {
		return nil, common.NewBadRequestError("rejection requires a reason", nil)
	}
	ok, err := s.repo.Reject(ctx, w.ID, adminID, reason)
	if err != nil {
		return nil, common.NewInternalServerError("failed to reject withdrawal")
	}
	if !ok {
		return nil, common.NewInvalidStateError(
			fmt.Sprintf("withdrawal in status %s cannot be rejected", w.Status))
	}
	return s.reload(ctx, w.ID)
}

func (s *Service) markPaid(ctx context.Context, w *Withdrawal, adminID uuid.UUID, paymentRef string) (*Withdrawal, error) {
	// Replay guard: a debit already referencing this withdrawal means a
	// prior mark_paid succeeded even if its response was lost.
	debited, err := s.repo.HasDebit(ctx, w.ID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to check ledger")
	}
	if debited {
		return s.reload(ctx, w.ID)
	}

	// Hard check. The debit itself re-checks under row lock, but failing
	// here gives the admin a clean error instead of a rolled-back tx.
	balance, err := s.repo.GetBalance(ctx, w.UserID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to check wallet balance")
	}
	if balance < w.Amount {
		return nil, common.NewInsufficientFundsAtPayoutError(
			fmt.Sprintf("wallet balance %.2f is less than withdrawal amount %.2f", balance, w.Amount))
	}

	note := fmt.Sprintf("Withdrawal payout %s", w.ID)
	txn, err := s.repo.MarkPaid(ctx, w.ID, w.UserID, adminID, w.Amount, paymentRef, note)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrDuplicateReference):
			// Lost the race with a concurrent mark_paid that committed first
			return s.reload(ctx, w.ID)
		case errors.Is(err, wallet.ErrInsufficientBalance):
			return nil, common.NewInsufficientFundsAtPayoutError(
				fmt.Sprintf("wallet balance dropped below withdrawal amount %.2f", w.Amount))
		case errors.Is(err, pgx.ErrNoRows):
			reloaded, rerr := s.reload(ctx, w.ID)
			if rerr != nil {
				return nil, rerr
			}
			if reloaded.Status == StatusPaid {
				return reloaded, nil
			}
			return nil, common.NewInvalidStateError(
				fmt.Sprintf("withdrawal in status %s cannot be paid", reloaded.Status))
		default:
			return nil, common.NewInternalServerError("failed to pay withdrawal")
		}
	}

	s.publisher.Publish(events.SubjectWithdrawalPaid, map[string]interface{}{
		"withdrawal_id":  w.ID,
		"user_id":        w.UserID,
		"amount":         w.Amount,
		"transaction_id": txn.ID,
	})
	logger.WithContext(ctx).Info("Withdrawal paid",
		zap.String("withdrawal_id", w.ID.String()),
		zap.String("user_id", w.UserID.String()),
		zap.Float64("amount", w.Amount),
		zap.Float64("balance_after", txn.BalanceAfter),
	)

	return s.reload(ctx, w.ID)
}

// Get returns a withdrawal visible to its owner or an admin
func (s *Service) Get(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*Withdrawal, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, common.NewInternalServerError("failed to get withdrawal")
	}
	if w == nil || (!isAdmin && w.UserID != userID) {
		return nil, common.NewNotFoundError("withdrawal not found", nil)
	}
	return w, nil
}

// ListMine lists the caller's withdrawals
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Withdrawal, int64, error) {
	ws, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to list withdrawals")
	}
	return ws, total, nil
}

// ListPending lists withdrawals awaiting review
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*Withdrawal, int64, error) {
	ws, total, err := s.repo.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to list pending withdrawals")
	}
	return ws, total, nil
}

func (s *Service) reload(ctx context.Context, id uuid.UUID) (*Withdrawal, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, common.NewInternalServerError("failed to reload withdrawal")
	}
	if w == nil {
		return nil, common.NewNotFoundError("withdrawal not found", nil)
	}
	return w, nil
}
