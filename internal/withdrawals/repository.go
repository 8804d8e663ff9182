package withdrawals

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haulport/logistics-backend/internal/wallet"
)

// Repository handles withdrawal data access. Review transitions use the
// same conditional-update discipline as order claims so two concurrent
// admin reviews cannot both succeed.
type Repository struct {
	db     *pgxpool.Pool
	ledger *wallet.Repository
}

// NewRepository creates a new withdrawal repository
func NewRepository(db *pgxpool.Pool, ledger *wallet.Repository) *Repository {
	return &Repository{db: db, ledger: ledger}
}

const withdrawalColumns = `
	id, user_id, amount, bank_name, account_name, account_number, status,
	rejection_reason, payment_ref, reviewed_by, reviewed_at, paid_at,
	created_at, updated_at
`

func scanWithdrawal(row pgx.Row) (*Withdrawal, error) {
	w := &Withdrawal{}
	err := row.Scan(
		&w.ID, &w.UserID, &w.Amount, &w.BankName, &w.AccountName,
		&w.AccountNumber, &w.Status, &w.RejectionReason, &w.PaymentRef,
		&w.ReviewedBy, &w.ReviewedAt, &w.PaidAt, &w.CreatedAt, &w.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Create inserts a pending withdrawal
func (r *Repository) Create(ctx context.Context, w *Withdrawal) error {
	query := `
		INSERT INTO withdrawals (
			id, user_id, amount, bank_name, account_name, account_number,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		w.ID, w.UserID, w.Amount, w.BankName, w.AccountName, w.AccountNumber,
		w.Status, w.CreatedAt, w.UpdatedAt,
	)
	return err
}

// GetByID retrieves a withdrawal
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1`
	return scanWithdrawal(r.db.QueryRow(ctx, query, id))
}

// Approve conditionally moves a pending withdrawal to approved
func (r *Repository) Approve(ctx context.Context, id, adminID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE withdrawals
		SET status = 'approved', reviewed_by = $2, reviewed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id, adminID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Reject conditionally moves a pending withdrawal to rejected with a reason
func (r *Repository) Reject(ctx context.Context, id, adminID uuid.UUID, reason string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE withdrawals
		SET status = 'rejected', rejection_reason = $3, reviewed_by = $2,
			reviewed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id, adminID, reason)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkPaid debits the wallet and flips the withdrawal to paid in one
// transaction. The conditional update on status doubles as the guard
// against concurrent reviews; the ledger's unique withdrawal reference
// guards against replays.
func (r *Repository) MarkPaid(ctx context.Context, id, userID, adminID uuid.UUID, amount float64, paymentRef, note string) (*wallet.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE withdrawals
		SET status = 'paid', paid_at = NOW(), payment_ref = $3,
			reviewed_by = $2, reviewed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'approved')
	`, id, adminID, paymentRef)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	txn, err := r.ledger.DebitTx(ctx, tx, userID, amount, id, note)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return txn, nil
}

// HasDebit reports whether a ledger debit already references this withdrawal
func (r *Repository) HasDebit(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.ledger.HasTransactionForWithdrawal(ctx, r.db, id)
}

// GetBalance reads the user's current wallet balance for the payout checks
func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (float64, error) {
	return r.ledger.GetBalance(ctx, userID)
}

// ListByUser lists a user's withdrawals newest first
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Withdrawal, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM withdrawals WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return collectWithdrawals(rows, total)
}

// ListPending lists withdrawals awaiting admin review, oldest first
func (r *Repository) ListPending(ctx context.Context, limit, offset int) ([]*Withdrawal, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM withdrawals WHERE status = 'pending'`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE status = 'pending' ORDER BY created_at ASC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return collectWithdrawals(rows, total)
}

func collectWithdrawals(rows pgx.Rows, total int64) ([]*Withdrawal, int64, error) {
	var out []*Withdrawal
	for rows.Next() {
		w := &Withdrawal{}
		err := rows.Scan(
			&w.ID, &w.UserID, &w.Amount, &w.BankName, &w.AccountName,
			&w.AccountNumber, &w.Status, &w.RejectionReason, &w.PaymentRef,
			&w.ReviewedBy, &w.ReviewedAt, &w.PaidAt, &w.CreatedAt, &w.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, w)
	}
	return out, total, nil
}
