package payments

import (
	"time"

	"github.com/google/uuid"
)

// Method selects the gateway used to collect an order payment
type Method string

const (
	MethodCard     Method = "card"
	MethodRedirect Method = "redirect"
)

// IntentStatus is the gateway-facing payment state. It is mapped onto the
// order's payment_status when the gateway confirms or fails the charge.
type IntentStatus string

const (
	IntentPending   IntentStatus = "pending"
	IntentSucceeded IntentStatus = "succeeded"
	IntentFailed    IntentStatus = "failed"
)

// Intent tracks one attempt to collect payment for an order
type Intent struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	OrderID   uuid.UUID    `json:"order_id" db:"order_id"`
	Provider  string       `json:"provider" db:"provider"`
	Reference string       `json:"reference" db:"reference"`
	Amount    float64      `json:"amount" db:"amount"`
	Currency  string       `json:"currency" db:"currency"`
	Status    IntentStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`

	// Returned to the client on initialization, never persisted
	ClientSecret string `json:"client_secret,omitempty" db:"-"`
	RedirectURL  string `json:"redirect_url,omitempty" db:"-"`
}

// InitializeRequest starts payment collection for an order
type InitializeRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
	Method  Method    `json:"method" binding:"required,oneof=card redirect"`
}
