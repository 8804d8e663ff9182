package drivers

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the driver repository operations
type RepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Driver, error)
	SetOnline(ctx context.Context, userID uuid.UUID, online bool) error
	UpdateAvailability(ctx context.Context, userID uuid.UUID, availability Availability) error
	CountActiveOrders(ctx context.Context, userID uuid.UUID) (int, error)
	UpdateKYC(ctx context.Context, userID uuid.UUID, status KYCStatus, reference string) error
}

// PresenceStore tracks driver heartbeats
type PresenceStore interface {
	Heartbeat(ctx context.Context, driverID uuid.UUID) error
	SetOffline(ctx context.Context, driverID uuid.UUID) error
	IsOnline(ctx context.Context, driverID uuid.UUID) (bool, error)
}
