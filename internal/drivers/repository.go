package drivers

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles driver data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new driver repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const driverColumns = `
	d.id, d.user_id, u.is_active, d.role, d.vehicle_plate, d.is_online,
	d.availability, d.kyc_status, d.kyc_reference, d.max_active_orders,
	d.created_at, d.updated_at
`

func scanDriver(row pgx.Row) (*Driver, error) {
	d := &Driver{}
	err := row.Scan(
		&d.ID, &d.UserID, &d.AccountActive, &d.Role, &d.VehiclePlate,
		&d.IsOnline, &d.Availability, &d.KYCStatus, &d.KYCReference,
		&d.MaxActiveOrders, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetByUserID retrieves the driver profile for a user account. The account's
// active flag rides along so gates downstream see deactivations without a
// second lookup.
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers d JOIN users u ON u.id = d.user_id WHERE d.user_id = $1`
	return scanDriver(r.db.QueryRow(ctx, query, userID))
}

// SetOnline persists the driver's online flag
func (r *Repository) SetOnline(ctx context.Context, userID uuid.UUID, online bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE drivers SET is_online = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, online,
	)
	return err
}

// UpdateAvailability persists the derived availability classification
func (r *Repository) UpdateAvailability(ctx context.Context, userID uuid.UUID, availability Availability) error {
	_, err := r.db.Exec(ctx,
		`UPDATE drivers SET availability = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, availability,
	)
	return err
}

// CountActiveOrders counts the driver's orders currently in assigned or
// in_progress status
func (r *Repository) CountActiveOrders(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE driver_id = $1 AND status IN ('assigned', 'in_progress')`,
		userID,
	).Scan(&count)
	return count, err
}

// UpdateKYC stores the verification outcome on the driver row
func (r *Repository) UpdateKYC(ctx context.Context, userID uuid.UUID, status KYCStatus, reference string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE drivers SET kyc_status = $2, kyc_reference = $3, updated_at = NOW() WHERE user_id = $1`,
		userID, status, reference,
	)
	return err
}
