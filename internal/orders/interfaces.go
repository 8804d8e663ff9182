package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/haulport/logistics-backend/internal/drivers"
	"github.com/haulport/logistics-backend/internal/wallet"
)

// RepositoryInterface defines the order repository operations
type RepositoryInterface interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	Claim(ctx context.Context, orderID, driverID uuid.UUID) (bool, error)
	Start(ctx context.Context, orderID, driverID uuid.UUID) (bool, error)
	Cancel(ctx context.Context, orderID, customerID uuid.UUID) (bool, error)
	CompleteAndCredit(ctx context.Context, orderID, driverID uuid.UUID, platformFee, driverEarning, creditAmount float64, note string) (*wallet.Transaction, error)
	HasCreditForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	ListOpen(ctx context.Context, filters *ListFilters, limit, offset int) ([]*Order, int64, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Order, int64, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*Order, int64, error)
}

// DriverService is the slice of the driver service the order lifecycle
// consults: claim gates and availability recomputes.
type DriverService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*drivers.Driver, error)
	EffectiveOnline(ctx context.Context, d *drivers.Driver) bool
	MaxActiveOrders(d *drivers.Driver) int
	RecomputeAvailabilityByUserID(ctx context.Context, userID uuid.UUID) error
}

// ActiveCounter counts a driver's active orders for the capacity gate
type ActiveCounter interface {
	CountActiveOrders(ctx context.Context, userID uuid.UUID) (int, error)
}
