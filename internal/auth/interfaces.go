package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/haulport/logistics-backend/internal/drivers"
)

// RepositoryInterface defines user data access operations
type RepositoryInterface interface {
	CreateUser(ctx context.Context, user *User, driver *drivers.Driver) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
