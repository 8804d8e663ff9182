package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haulport/logistics-backend/internal/wallet"
)

// codeMaxAttempts bounds the order-code collision retry loop.
const codeMaxAttempts = 5

const uniqueViolationCode = "23505"

var (
	// ErrCodeExhausted means 5 consecutive code collisions; practically
	// unreachable outside of tests that pin the RNG.
	ErrCodeExhausted = errors.New("could not generate unique order code")
)

// Repository handles order data access. It receives the wallet ledger so
// completion can credit the driver inside the same transaction that flips
// the order state.
type Repository struct {
	db     *pgxpool.Pool
	ledger *wallet.Repository
}

// NewRepository creates a new order repository
func NewRepository(db *pgxpool.Pool, ledger *wallet.Repository) *Repository {
	return &Repository{db: db, ledger: ledger}
}

const orderColumns = `
	id, code, category, status, payment_status, customer_id, driver_id,
	amount, tip_amount, currency, platform_fee, driver_earning,
	pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, distance_km, eta_minutes,
	metadata, accepted_at, started_at, completed_at, cancelled_at,
	created_at, updated_at
`

func scanOrder(row pgx.Row) (*Order, error) {
	o := &Order{}
	err := row.Scan(
		&o.ID, &o.Code, &o.Category, &o.Status, &o.PaymentStatus,
		&o.CustomerID, &o.DriverID, &o.Amount, &o.TipAmount, &o.Currency,
		&o.PlatformFee, &o.DriverEarning,
		&o.PickupLat, &o.PickupLng, &o.DropoffLat, &o.DropoffLng,
		&o.DistanceKm, &o.EtaMinutes, &o.Metadata,
		&o.AcceptedAt, &o.StartedAt, &o.CompletedAt, &o.CancelledAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Create inserts a new order, regenerating the human-readable code on
// collision up to codeMaxAttempts times.
func (r *Repository) Create(ctx context.Context, o *Order) error {
	query := `
		INSERT INTO orders (
			id, code, category, status, payment_status, customer_id,
			amount, tip_amount, currency,
			pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
			distance_km, eta_minutes, metadata, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)
	`

	for attempt := 0; attempt < codeMaxAttempts; attempt++ {
		_, err := r.db.Exec(ctx, query,
			o.ID, o.Code, o.Category, o.Status, o.PaymentStatus, o.CustomerID,
			o.Amount, o.TipAmount, o.Currency,
			o.PickupLat, o.PickupLng, o.DropoffLat, o.DropoffLng,
			o.DistanceKm, o.EtaMinutes, o.Metadata, o.CreatedAt, o.UpdatedAt,
		)
		if err == nil {
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == "orders_code_key" {
			o.Code = generateCode(o.Category, time.Now())
			continue
		}
		return err
	}

	return ErrCodeExhausted
}

// GetByID retrieves an order
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.db.QueryRow(ctx, query, id))
}

// Claim atomically assigns a pending, unassigned order to a driver. Zero
// rows affected means another driver got there first; that conditional
// update is the sole correctness mechanism against the double-claim race.
func (r *Repository) Claim(ctx context.Context, orderID, driverID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = 'assigned', driver_id = $2, accepted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND driver_id IS NULL
	`, orderID, driverID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Start atomically transitions the caller's assigned order to in_progress
func (r *Repository) Start(ctx context.Context, orderID, driverID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = 'in_progress', started_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND driver_id = $2 AND status = 'assigned'
	`, orderID, driverID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Cancel atomically cancels the customer's own pending order
func (r *Repository) Cancel(ctx context.Context, orderID, customerID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = 'cancelled', cancelled_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND customer_id = $2 AND status = 'pending'
	`, orderID, customerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CompleteAndCredit flips the order to completed and credits the driver's
// wallet in one transaction. Either both happen or neither does. A
// wallet.ErrDuplicateReference from the ledger means a replay; the caller
// resolves it as already-processed.
func (r *Repository) CompleteAndCredit(ctx context.Context, orderID, driverID uuid.UUID, platformFee, driverEarning, creditAmount float64, note string) (*wallet.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = 'completed', completed_at = NOW(),
			platform_fee = $3, driver_earning = $4, updated_at = NOW()
		WHERE id = $1 AND driver_id = $2 AND status IN ('assigned', 'in_progress')
	`, orderID, driverID, platformFee, driverEarning)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	txn, err := r.ledger.CreditTx(ctx, tx, driverID, creditAmount, orderID, note)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return txn, nil
}

// HasCreditForOrder reports whether the ledger already holds a credit for
// this order (the app-level replay guard)
func (r *Repository) HasCreditForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	return r.ledger.HasTransactionForOrder(ctx, r.db, orderID)
}

// ListOpen lists pending, unassigned orders drivers can claim
func (r *Repository) ListOpen(ctx context.Context, filters *ListFilters, limit, offset int) ([]*Order, int64, error) {
	where := `WHERE status = 'pending' AND driver_id IS NULL`
	args := []any{}
	if filters != nil && filters.Category != nil {
		args = append(args, *filters.Category)
		where += ` AND category = $1`
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders ` + where +
		` ORDER BY created_at ASC` + limitOffsetClause(len(args))
	args = append(args, limit, offset)

	return r.queryOrders(ctx, query, args, total)
}

// ListByCustomer lists a customer's orders newest first
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Order, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE customer_id = $1`, customerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.queryOrders(ctx, query, []any{customerID, limit, offset}, total)
}

// ListByDriver lists a driver's orders newest first
func (r *Repository) ListByDriver(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*Order, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE driver_id = $1`, driverID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE driver_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.queryOrders(ctx, query, []any{driverID, limit, offset}, total)
}

func (r *Repository) queryOrders(ctx context.Context, query string, args []any, total int64) ([]*Order, int64, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		o := &Order{}
		err := rows.Scan(
			&o.ID, &o.Code, &o.Category, &o.Status, &o.PaymentStatus,
			&o.CustomerID, &o.DriverID, &o.Amount, &o.TipAmount, &o.Currency,
			&o.PlatformFee, &o.DriverEarning,
			&o.PickupLat, &o.PickupLng, &o.DropoffLat, &o.DropoffLng,
			&o.DistanceKm, &o.EtaMinutes, &o.Metadata,
			&o.AcceptedAt, &o.StartedAt, &o.CompletedAt, &o.CancelledAt,
			&o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}

	return out, total, nil
}

func limitOffsetClause(argCount int) string {
	switch argCount {
	case 0:
		return ` LIMIT $1 OFFSET $2`
	default:
		return ` LIMIT $2 OFFSET $3`
	}
}
