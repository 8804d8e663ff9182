package wallet

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

// fakeQuerier scripts the three statements the ledger issues: the locking
// balance read, the transaction insert, and the balance write.
type fakeQuerier struct {
	balance    float64
	insertErr  error
	inserted   []*Transaction
	newBalance *float64
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return fakeRow{scan: func(dest ...any) error {
		*(dest[0].(*float64)) = f.balance
		return nil
	}}
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected Query")
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if strings.Contains(sql, "INSERT INTO wallet_transactions") {
		if f.insertErr != nil {
			return pgconn.CommandTag{}, f.insertErr
		}
		txn := &Transaction{
			ID:            args[0].(uuid.UUID),
			UserID:        args[1].(uuid.UUID),
			Type:          args[2].(TransactionType),
			Amount:        args[3].(float64),
			BalanceBefore: args[4].(float64),
			BalanceAfter:  args[5].(float64),
			OrderID:       args[6].(*uuid.UUID),
			WithdrawalID:  args[7].(*uuid.UUID),
			Note:          args[8].(string),
		}
		f.inserted = append(f.inserted, txn)
		return pgconn.CommandTag{}, nil
	}
	balance := args[1].(float64)
	f.newBalance = &balance
	return pgconn.CommandTag{}, nil
}

func TestCreditTxSnapshotsBalances(t *testing.T) {
	repo := &Repository{}
	q := &fakeQuerier{balance: 1000.50}
	userID := uuid.New()
	orderID := uuid.New()

	txn, err := repo.CreditTx(context.Background(), q, userID, 21250.00, orderID, "Earnings for order DP-2026-0042")

	require.NoError(t, err)
	assert.Equal(t, TransactionTypeCredit, txn.Type)
	assert.Equal(t, 1000.50, txn.BalanceBefore)
	assert.Equal(t, 22250.50, txn.BalanceAfter)
	require.NotNil(t, txn.OrderID)
	assert.Equal(t, orderID, *txn.OrderID)
	assert.Nil(t, txn.WithdrawalID)

	require.Len(t, q.inserted, 1)
	assert.Equal(t, txn.BalanceAfter, q.inserted[0].BalanceAfter)
	require.NotNil(t, q.newBalance)
	assert.Equal(t, 22250.50, *q.newBalance)
}

func TestCreditTxRoundsNewBalance(t *testing.T) {
	repo := &Repository{}
	q := &fakeQuerier{balance: 0.10}

	txn, err := repo.CreditTx(context.Background(), q, uuid.New(), 0.20, uuid.New(), "")

	require.NoError(t, err)
	assert.Equal(t, 0.30, txn.BalanceAfter)
	require.NotNil(t, q.newBalance)
	assert.Equal(t, 0.30, *q.newBalance)
}

func TestDebitTxExactBalanceSucceeds(t *testing.T) {
	repo := &Repository{}
	q := &fakeQuerier{balance: 500.00}
	withdrawalID := uuid.New()

	txn, err := repo.DebitTx(context.Background(), q, uuid.New(), 500.00, withdrawalID, "Withdrawal payout")

	require.NoError(t, err)
	assert.Equal(t, TransactionTypeDebit, txn.Type)
	assert.Equal(t, 500.00, txn.BalanceBefore)
	assert.Equal(t, 0.00, txn.BalanceAfter)
	require.NotNil(t, txn.WithdrawalID)
	assert.Equal(t, withdrawalID, *txn.WithdrawalID)
	assert.Nil(t, txn.OrderID)
	require.NotNil(t, q.newBalance)
	assert.Equal(t, 0.00, *q.newBalance)
}

func TestDebitTxInsufficientBalanceMutatesNothing(t *testing.T) {
	repo := &Repository{}
	q := &fakeQuerier{balance: 499.99}

	_, err := repo.DebitTx(context.Background(), q, uuid.New(), 500.00, uuid.New(), "")

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Empty(t, q.inserted)
	assert.Nil(t, q.newBalance)
}

func TestDuplicateReferenceMapsUniqueViolation(t *testing.T) {
	repo := &Repository{}
	q := &fakeQuerier{
		balance:   100.00,
		insertErr: &pgconn.PgError{Code: "23505", ConstraintName: "wallet_transactions_order_id_key"},
	}

	_, err := repo.CreditTx(context.Background(), q, uuid.New(), 50.00, uuid.New(), "")

	assert.ErrorIs(t, err, ErrDuplicateReference)
	assert.Nil(t, q.newBalance)
}

func TestInsertErrorPassesThrough(t *testing.T) {
	repo := &Repository{}
	sentinel := errors.New("connection reset")
	q := &fakeQuerier{balance: 100.00, insertErr: sentinel}

	_, err := repo.DebitTx(context.Background(), q, uuid.New(), 50.00, uuid.New(), "")

	assert.ErrorIs(t, err, sentinel)
}
