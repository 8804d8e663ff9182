package payments

import (
	"context"

	"github.com/google/uuid"

	"github.com/haulport/logistics-backend/internal/orders"
)

// RepositoryInterface defines payment intent persistence
type RepositoryInterface interface {
	CreateIntent(ctx context.Context, i *Intent) error
	GetIntentByReference(ctx context.Context, reference string) (*Intent, error)
	SettleIntent(ctx context.Context, intentID, orderID uuid.UUID, status IntentStatus, orderPaymentStatus string) error
	MarkOrderPaymentPending(ctx context.Context, orderID uuid.UUID) error
}

// OrderReader is the slice of the order store payments needs
type OrderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*orders.Order, error)
}
