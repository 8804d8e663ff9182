package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haulport/logistics-backend/internal/drivers"
)

// ErrEmailTaken is returned when registration hits the unique email index
var ErrEmailTaken = errors.New("email already registered")

// Repository handles user data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new auth repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `
	id, email, phone_number, password_hash, first_name, last_name, role,
	wallet_balance, is_active, created_at, updated_at
`

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.FirstName,
		&u.LastName, &u.Role, &u.WalletBalance, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a user, and for drivers the driver row in the same
// transaction
func (r *Repository) CreateUser(ctx context.Context, user *User, driver *drivers.Driver) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (
			id, email, phone_number, password_hash, first_name, last_name,
			role, wallet_balance, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 0, TRUE, $8, $9)
	`, user.ID, user.Email, user.PhoneNumber, user.PasswordHash,
		user.FirstName, user.LastName, user.Role, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return err
	}

	if driver != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO drivers (
				id, user_id, role, vehicle_plate, is_online, availability,
				kyc_status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, FALSE, 'offline', 'pending', $5, $6)
		`, driver.ID, driver.UserID, driver.Role, driver.VehiclePlate,
			driver.CreatedAt, driver.UpdatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// GetByID retrieves a user by id
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// TouchLastLogin is best effort and ignores errors at call sites
func (r *Repository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET updated_at = $2 WHERE id = $1`, id, at)
	return err
}
