package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists payment intents and mirrors gateway outcomes onto
// the order's payment_status column. It never touches the wallet ledger.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new payment repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const intentColumns = `
	id, order_id, provider, reference, amount, currency, status,
	created_at, updated_at
`

func scanIntent(row pgx.Row) (*Intent, error) {
	i := &Intent{}
	err := row.Scan(
		&i.ID, &i.OrderID, &i.Provider, &i.Reference, &i.Amount,
		&i.Currency, &i.Status, &i.CreatedAt, &i.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return i, nil
}

// CreateIntent inserts a payment intent
func (r *Repository) CreateIntent(ctx context.Context, i *Intent) error {
	query := `
		INSERT INTO payment_intents (
			id, order_id, provider, reference, amount, currency, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		i.ID, i.OrderID, i.Provider, i.Reference, i.Amount, i.Currency,
		i.Status, i.CreatedAt, i.UpdatedAt,
	)
	return err
}

// GetIntentByReference looks up an intent by its gateway reference
func (r *Repository) GetIntentByReference(ctx context.Context, reference string) (*Intent, error) {
	query := `SELECT ` + intentColumns + ` FROM payment_intents WHERE reference = $1`
	return scanIntent(r.db.QueryRow(ctx, query, reference))
}

// SettleIntent records the gateway outcome for an intent and mirrors it
// onto the order. The conditional update keeps a late "failed" callback
// from clobbering an already-succeeded intent.
func (r *Repository) SettleIntent(ctx context.Context, intentID, orderID uuid.UUID, status IntentStatus, orderPaymentStatus string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE payment_intents
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status != 'succeeded'
	`, intentID, status)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET payment_status = $2, updated_at = NOW()
		WHERE id = $1 AND payment_status != 'paid'
	`, orderID, orderPaymentStatus)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// MarkOrderPaymentPending flips the order to pending while collection is
// in flight
func (r *Repository) MarkOrderPaymentPending(ctx context.Context, orderID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE orders
		SET payment_status = 'pending', updated_at = NOW()
		WHERE id = $1 AND payment_status IN ('unpaid', 'failed')
	`, orderID)
	return err
}
