package reports

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Repository serves read-only aggregates over database/sql. Reporting
// queries stay off the pgx pool so a slow statement cannot starve the
// transactional path.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new reports repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// WalletStatement builds a period statement from the ledger
func (r *Repository) WalletStatement(ctx context.Context, userID uuid.UUID, from, to time.Time) (*WalletStatement, error) {
	stmt := &WalletStatement{UserID: userID, From: from, To: to}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'credit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'debit'), 0),
			COUNT(*)
		FROM wallet_transactions
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
	`, userID, from, to).Scan(&stmt.TotalCredits, &stmt.TotalDebits, &stmt.TransactionCount)
	if err != nil {
		return nil, err
	}
	stmt.NetChange = stmt.TotalCredits - stmt.TotalDebits

	err = r.db.QueryRowContext(ctx,
		`SELECT wallet_balance FROM users WHERE id = $1`, userID,
	).Scan(&stmt.ClosingBalance)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			date_trunc('day', created_at) AS day,
			COALESCE(SUM(amount) FILTER (WHERE type = 'credit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'debit'), 0)
		FROM wallet_transactions
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY day
		ORDER BY day
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line DailyLine
		if err := rows.Scan(&line.Date, &line.Credits, &line.Debits); err != nil {
			return nil, err
		}
		stmt.Days = append(stmt.Days, line)
	}
	return stmt, rows.Err()
}

// PlatformSummary aggregates completed orders and payouts for a period
func (r *Repository) PlatformSummary(ctx context.Context, from, to time.Time) (*PlatformSummary, error) {
	summary := &PlatformSummary{From: from, To: to}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(amount + tip_amount), 0),
			COALESCE(SUM(platform_fee), 0),
			COALESCE(SUM(driver_earning), 0)
		FROM orders
		WHERE status = 'completed' AND completed_at >= $1 AND completed_at < $2
	`, from, to).Scan(
		&summary.OrdersCompleted, &summary.GrossVolume,
		&summary.PlatformFees, &summary.DriverEarnings,
	)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM withdrawals
		WHERE status = 'paid' AND paid_at >= $1 AND paid_at < $2
	`, from, to).Scan(&summary.WithdrawalsPaid)
	if err != nil {
		return nil, err
	}
	return summary, nil
}
