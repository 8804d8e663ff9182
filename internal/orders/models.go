package orders

import (
	"time"

	"github.com/google/uuid"
)

// ServiceCategory identifies the kind of work requested
type ServiceCategory string

const (
	CategoryDispatch    ServiceCategory = "DISPATCH"
	CategoryParkNGo     ServiceCategory = "PARK_N_GO"
	CategoryWastePickup ServiceCategory = "WASTE_PICKUP"
	CategoryRideBooking ServiceCategory = "RIDE_BOOKING"
)

// Status is the order lifecycle state. Legal transitions:
// pending -> assigned -> in_progress -> completed, assigned -> completed
// (start is optional), and pending -> cancelled. completed and cancelled
// are terminal.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus tracks the customer payment on an order. It is mutated only
// by the payment integration, never by the wallet ledger.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Order is a unit of requested work. A pending order always has a nil
// DriverID; any non-pending, non-cancelled order has one set.
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Code          string          `json:"code" db:"code"`
	Category      ServiceCategory `json:"category" db:"category"`
	Status        Status          `json:"status" db:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status" db:"payment_status"`
	CustomerID    uuid.UUID       `json:"customer_id" db:"customer_id"`
	DriverID      *uuid.UUID      `json:"driver_id,omitempty" db:"driver_id"`
	Amount        float64         `json:"amount" db:"amount"`
	TipAmount     float64         `json:"tip_amount" db:"tip_amount"`
	Currency      string          `json:"currency" db:"currency"`
	PlatformFee   *float64        `json:"platform_fee,omitempty" db:"platform_fee"`
	DriverEarning *float64        `json:"driver_earning,omitempty" db:"driver_earning"`

	PickupLat  *float64 `json:"pickup_lat,omitempty" db:"pickup_lat"`
	PickupLng  *float64 `json:"pickup_lng,omitempty" db:"pickup_lng"`
	DropoffLat *float64 `json:"dropoff_lat,omitempty" db:"dropoff_lat"`
	DropoffLng *float64 `json:"dropoff_lng,omitempty" db:"dropoff_lng"`
	DistanceKm *float64 `json:"distance_km,omitempty" db:"distance_km"`
	EtaMinutes *int     `json:"eta_minutes,omitempty" db:"eta_minutes"`

	// Metadata carries service-specific fields (package size, waste type,
	// vehicle preferences) the core does not interpret.
	Metadata map[string]interface{} `json:"metadata,omitempty" db:"metadata"`

	AcceptedAt  *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Active reports whether the order counts against driver capacity
func (s Status) Active() bool {
	return s == StatusAssigned || s == StatusInProgress
}

// Terminal reports whether the order can no longer change state
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CreateOrderRequest creates a new order
type CreateOrderRequest struct {
	Category   ServiceCategory        `json:"category" binding:"required,oneof=DISPATCH PARK_N_GO WASTE_PICKUP RIDE_BOOKING"`
	Amount     float64                `json:"amount" binding:"required,gt=0"`
	TipAmount  float64                `json:"tip_amount" binding:"gte=0"`
	PickupLat  *float64               `json:"pickup_lat,omitempty"`
	PickupLng  *float64               `json:"pickup_lng,omitempty"`
	DropoffLat *float64               `json:"dropoff_lat,omitempty"`
	DropoffLng *float64               `json:"dropoff_lng,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// ListFilters narrows order listings
type ListFilters struct {
	Category *ServiceCategory
	Status   *Status
}
