package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haulport/logistics-backend/internal/settlement"
)

// Sentinel errors surfaced by ledger operations. Services map these onto the
// caller-facing error taxonomy.
var (
	// ErrInsufficientBalance means the debit would take the balance negative.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	// ErrDuplicateReference means a ledger entry already exists for the
	// causal order/withdrawal. Callers treat this as "already processed".
	ErrDuplicateReference = errors.New("ledger entry already exists for reference")
)

const uniqueViolationCode = "23505"

// Querier is the subset of pgx operations the ledger needs. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so ledger writes can join a caller's
// transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository is the wallet ledger data layer
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new wallet repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Pool exposes the underlying pool for callers that open their own
// transactions around ledger writes.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.db
}

// CreditTx records a credit and updates the denormalized balance as one unit.
// It must be called inside the transaction that performs the causally linked
// state change (order completion). The user row is locked for the duration so
// the balance read, insert, and balance write serialize against concurrent
// ledger writes for the same user.
func (r *Repository) CreditTx(ctx context.Context, q Querier, userID uuid.UUID, amount float64, orderID uuid.UUID, note string) (*Transaction, error) {
	balanceBefore, err := r.lockBalance(ctx, q, userID)
	if err != nil {
		return nil, err
	}

	balanceAfter := settlement.Round2(balanceBefore + amount)

	txn := &Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          TransactionTypeCredit,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		OrderID:       &orderID,
		Note:          note,
		CreatedAt:     time.Now(),
	}

	if err := r.insertTransaction(ctx, q, txn); err != nil {
		return nil, err
	}

	if err := r.writeBalance(ctx, q, userID, balanceAfter); err != nil {
		return nil, err
	}

	return txn, nil
}

// DebitTx records a debit and updates the denormalized balance as one unit.
// Fails with ErrInsufficientBalance without mutating anything when the locked
// balance cannot cover the amount.
func (r *Repository) DebitTx(ctx context.Context, q Querier, userID uuid.UUID, amount float64, withdrawalID uuid.UUID, note string) (*Transaction, error) {
	balanceBefore, err := r.lockBalance(ctx, q, userID)
	if err != nil {
		return nil, err
	}

	if balanceBefore < amount {
		return nil, ErrInsufficientBalance
	}

	balanceAfter := settlement.Round2(balanceBefore - amount)

	txn := &Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          TransactionTypeDebit,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		WithdrawalID:  &withdrawalID,
		Note:          note,
		CreatedAt:     time.Now(),
	}

	if err := r.insertTransaction(ctx, q, txn); err != nil {
		return nil, err
	}

	if err := r.writeBalance(ctx, q, userID, balanceAfter); err != nil {
		return nil, err
	}

	return txn, nil
}

func (r *Repository) lockBalance(ctx context.Context, q Querier, userID uuid.UUID) (float64, error) {
	var balance float64
	err := q.QueryRow(ctx, `SELECT wallet_balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, errors.New("user not found")
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *Repository) insertTransaction(ctx context.Context, q Querier, txn *Transaction) error {
	query := `
		INSERT INTO wallet_transactions (
			id, user_id, type, amount, balance_before, balance_after,
			order_id, withdrawal_id, note, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := q.Exec(ctx, query,
		txn.ID, txn.UserID, txn.Type, txn.Amount,
		txn.BalanceBefore, txn.BalanceAfter,
		txn.OrderID, txn.WithdrawalID, txn.Note, txn.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

func (r *Repository) writeBalance(ctx context.Context, q Querier, userID uuid.UUID, balance float64) error {
	_, err := q.Exec(ctx, `UPDATE users SET wallet_balance = $2, updated_at = NOW() WHERE id = $1`, userID, balance)
	return err
}

// HasTransactionForOrder reports whether a ledger entry already references
// the given order. Used as the app-level replay guard before crediting; the
// unique constraint remains the actual guarantee.
func (r *Repository) HasTransactionForOrder(ctx context.Context, q Querier, orderID uuid.UUID) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM wallet_transactions WHERE order_id = $1)`, orderID).Scan(&exists)
	return exists, err
}

// HasTransactionForWithdrawal reports whether a ledger entry already
// references the given withdrawal.
func (r *Repository) HasTransactionForWithdrawal(ctx context.Context, q Querier, withdrawalID uuid.UUID) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM wallet_transactions WHERE withdrawal_id = $1)`, withdrawalID).Scan(&exists)
	return exists, err
}

// GetBalance reads the denormalized wallet balance
func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (float64, error) {
	var balance float64
	err := r.db.QueryRow(ctx, `SELECT wallet_balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, errors.New("user not found")
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// ListTransactions returns a user's ledger entries newest first
func (r *Repository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM wallet_transactions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, type, amount, balance_before, balance_after,
			   order_id, withdrawal_id, note, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []*Transaction
	for rows.Next() {
		t := &Transaction{}
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Type, &t.Amount,
			&t.BalanceBefore, &t.BalanceAfter,
			&t.OrderID, &t.WithdrawalID, &t.Note, &t.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, t)
	}

	return transactions, total, nil
}

// CheckConsistency compares the denormalized balance to the ledger: the
// balance must equal sum(credits) - sum(debits) and the balance_after of the
// most recent entry (0 when no entries exist).
func (r *Repository) CheckConsistency(ctx context.Context, userID uuid.UUID) (*ConsistencyReport, error) {
	report := &ConsistencyReport{UserID: userID}

	query := `
		SELECT u.wallet_balance,
			   COALESCE(SUM(CASE WHEN wt.type = 'credit' THEN wt.amount
								 WHEN wt.type = 'debit' THEN -wt.amount END), 0),
			   COALESCE((SELECT balance_after FROM wallet_transactions
						 WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1), 0)
		FROM users u
		LEFT JOIN wallet_transactions wt ON wt.user_id = u.id
		WHERE u.id = $1
		GROUP BY u.wallet_balance
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&report.WalletBalance, &report.LedgerSum, &report.LastBalanceAfter,
	)
	if err == pgx.ErrNoRows {
		return nil, errors.New("user not found")
	}
	if err != nil {
		return nil, err
	}

	report.LedgerSum = settlement.Round2(report.LedgerSum)
	report.Consistent = report.WalletBalance == report.LedgerSum &&
		report.WalletBalance == report.LastBalanceAfter
	return report, nil
}
