package withdrawals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haulport/logistics-backend/internal/events"
	"github.com/haulport/logistics-backend/internal/wallet"
	"github.com/haulport/logistics-backend/pkg/common"
)

// MockRepository is an in-package mock for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, w *Withdrawal) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Withdrawal), args.Error(1)
}

func (m *MockRepository) Approve(ctx context.Context, id, adminID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, adminID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Reject(ctx context.Context, id, adminID uuid.UUID, reason string) (bool, error) {
	args := m.Called(ctx, id, adminID, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) MarkPaid(ctx context.Context, id, userID, adminID uuid.UUID, amount float64, paymentRef, note string) (*wallet.Transaction, error) {
	args := m.Called(ctx, id, userID, adminID, amount, paymentRef, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockRepository) HasDebit(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) GetBalance(ctx context.Context, userID uuid.UUID) (float64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Withdrawal, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Withdrawal), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) ListPending(ctx context.Context, limit, offset int) ([]*Withdrawal, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Withdrawal), args.Get(1).(int64), args.Error(2)
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := common.AsAppError(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func pendingWithdrawal(userID uuid.UUID, amount float64) *Withdrawal {
	return &Withdrawal{
		ID:            uuid.New(),
		UserID:        userID,
		Amount:        amount,
		BankName:      "Zenith Bank",
		AccountName:   "Ada Obi",
		AccountNumber: "0123456789",
		Status:        StatusPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func TestRequestSoftBalanceCheck(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, events.NoopPublisher{})
	userID := uuid.New()

	repo.On("GetBalance", mock.Anything, userID).Return(500.0, nil)

	_, err := service.Request(context.Background(), userID, &RequestWithdrawal{
		Amount:        1000,
		BankName:      "Zenith Bank",
		AccountName:   "Ada Obi",
		AccountNumber: "0123456789",
	})

	assertAppErrorCode(t, err, common.CodeInsufficientFunds)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRequestCreatesPendingWithdrawal(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, events.NoopPublisher{})
	userID := uuid.New()

	repo.On("GetBalance", mock.Anything, userID).Return(5000.0, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*withdrawals.Withdrawal")).Return(nil)

	w, err := service.Request(context.Background(), userID, &RequestWithdrawal{
		Amount:        1000.005,
		BankName:      "Zenith Bank",
		AccountName:   "Ada Obi",
		AccountNumber: "0123456789",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusPending, w.Status)
	assert.Equal(t, 1000.0, w.Amount)
	repo.AssertExpectations(t)
}

func TestReviewApprovePending(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, events.NoopPublisher{})
	adminID := uuid.New()
	w := pendingWithdrawal(uuid.New(), 1000)
	approved := *w
	approved.Status = StatusApproved

	repo.On("GetByID", mock.Anything, w.ID).Return(w, nil).Once()
	repo.On("Approve", mock.Anything, w.ID, adminID).Return(true, nil)
	repo.On("GetByID", mock.Anything, w.ID).Return(&approved, nil).Once()

	got, err := service.Review(context.Background(), w.ID, adminID, &ReviewRequest{Action: ActionApprove})

	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
}

func TestReviewApproveLosesRace(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, events.NoopPublisher{})
	adminID := uuid.New()
	w := pendingWithdrawal(uuid.New(), 1000)

	repo.On("GetByID", mock.Anything, w.ID).Return(w, nil)
	repo.On("Approve", mock.Anything, w.ID, adminID).Return(false, nil)

	_, err := service.Review(context.Background(), w.ID, adminID, &ReviewRequest{Action: ActionApprove})

	assertAppErrorCode(t, err, common.CodeInvalidStateTransition)
}

func TestReviewRejectRequiresReason(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, events.NoopPublisher{})
	w := pendingWithdrawal(uuid.New(), 1000)

	repo.On("GetByID", mock.Anything, w.ID).Return(w, nil)

	_, err := service.Review(context.Background(), w.ID, uuid.New(), &ReviewRequest{Action: ActionReject})

	assertAppErrorCode(t, err, common.CodeBadRequest)
	repo.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkPaidDebitsWallet(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, events.NoopPublisher{})
	adminID := uuid.New()
	userID := uuid.New()
	w := pendingWithdrawal(userID, 1000)
	paid := *w
	paid.Status = StatusPaid

	txn := &wallet.Transaction{ID: uuid.New(), Amount: 1000, BalanceAfter: 4000}

	repo.On("GetByID", mock.Anything, w.ID).Return(w, nil).Once()
	repo.On("HasDebit", mock.Anything, w.ID).Return(false, nil)
	repo.On("GetBalance", mock.Anything, userID).Return(5000.0, nil)
	repo.On("MarkPaid", mock.Anything, w.ID, userID, adminID, 1000.0, "TRF-001", mock.AnythingOfType("string")).Return(txn, nil)
	repo.On("GetByID", mock.Anything, w.ID).Return(&paid, nil).Once()

	got, err := service.Review(context.Background(), w.ID, adminID, &ReviewRequest{
		Action:     ActionMarkPaid,
		PaymentRef: "TRF-001",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusPaid, got.Status)
	repo.AssertExpectations(t)
}

func TestMarkPaidHardBalanceCheck(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, events.NoopPublisher{})
	userID := uuid.New()
	w := pendingWithdrawal(userID, 1000)

	repo.On("GetByID", mock.Anything, w.ID).Return(w, nil)
	repo.On("HasDebit", mock.Anything, w.ID).Return(false, nil)
	repo.On("GetBalance", mock.Anything, userID).Return(300.0, nil)

	_, err := service.Review(context.Background(), w.ID, uuid.New(), &ReviewRequest{Action: ActionMarkPaid})

	assertAppErrorCode(t, err, common.CodeInsufficientFundsPayout)
	repo.AssertNotCalled(t, "MarkPaid",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkPaidReplayIsNoop(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, events.NoopPublisher{})
	userID := uuid.New()
	w := pendingWithdrawal(userID, 1000)
	w.Status = StatusPaid

	repo.On("GetByID", mock.Anything, w.ID).Return(w, nil)
	repo.On("HasDebit", mock.Anything, w.ID).Return(true, nil)

	got, err := service.Review(context.Background(), w.ID, uuid.New(), &ReviewRequest{Action: ActionMarkPaid})

	require.NoError(t, err)
	assert.Equal(t, StatusPaid, got.Status)
	repo.AssertNotCalled(t, "MarkPaid",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkPaidBalanceDropsInsideTransaction(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, events.NoopPublisher{})
	userID := uuid.New()
	w := pendingWithdrawal(userID, 1000)

	repo.On("GetByID", mock.Anything, w.ID).Return(w, nil)
	repo.On("HasDebit", mock.Anything, w.ID).Return(false, nil)
	repo.On("GetBalance", mock.Anything, userID).Return(5000.0, nil)
	repo.On("MarkPaid", mock.Anything, w.ID, userID, mock.Anything, 1000.0, "", mock.AnythingOfType("string")).
		Return(nil, wallet.ErrInsufficientBalance)

	_, err := service.Review(context.Background(), w.ID, uuid.New(), &ReviewRequest{Action: ActionMarkPaid})

	assertAppErrorCode(t, err, common.CodeInsufficientFundsPayout)
}

func TestMarkPaidTerminalStatusSurfacesInvalidState(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, events.NoopPublisher{})
	userID := uuid.New()
	w := pendingWithdrawal(userID, 1000)
	rejected := *w
	rejected.Status = StatusRejected

	repo.On("GetByID", mock.Anything, w.ID).Return(w, nil).Once()
	repo.On("HasDebit", mock.Anything, w.ID).Return(false, nil)
	repo.On("GetBalance", mock.Anything, userID).Return(5000.0, nil)
	repo.On("MarkPaid", mock.Anything, w.ID, userID, mock.Anything, 1000.0, "", mock.AnythingOfType("string")).
		Return(nil, pgx.ErrNoRows)
	repo.On("GetByID", mock.Anything, w.ID).Return(&rejected, nil).Once()

	_, err := service.Review(context.Background(), w.ID, uuid.New(), &ReviewRequest{Action: ActionMarkPaid})

	assertAppErrorCode(t, err, common.CodeInvalidStateTransition)
}
