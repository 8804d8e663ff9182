package drivers

import (
	"time"

	"github.com/google/uuid"
)

// Availability classifies a driver's capacity to take new orders. It is
// derived from the online flag and the count of active assigned orders, and
// recomputed after every claim and every completion.
type Availability string

const (
	AvailabilityOffline   Availability = "offline"
	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
)

// KYCStatus is the driver's identity verification state. Claiming orders
// requires KYCStatusApproved.
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

// DriverRole distinguishes the kinds of drivers on the platform
type DriverRole string

const (
	DriverRoleRider       DriverRole = "rider"
	DriverRoleTruckDriver DriverRole = "truck_driver"
	DriverRoleWasteDriver DriverRole = "waste_driver"
)

// Driver holds driver-specific state attached to a user account
type Driver struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	UserID          uuid.UUID    `json:"user_id" db:"user_id"`
	AccountActive   bool         `json:"account_active" db:"account_active"`
	Role            DriverRole   `json:"role" db:"role"`
	VehiclePlate    *string      `json:"vehicle_plate,omitempty" db:"vehicle_plate"`
	IsOnline        bool         `json:"is_online" db:"is_online"`
	Availability    Availability `json:"availability" db:"availability"`
	KYCStatus       KYCStatus    `json:"kyc_status" db:"kyc_status"`
	KYCReference    *string      `json:"kyc_reference,omitempty" db:"kyc_reference"`
	MaxActiveOrders int          `json:"max_active_orders" db:"max_active_orders"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}

// SubmitKYCRequest carries the role-specific identity inputs forwarded to
// the verification provider
type SubmitKYCRequest struct {
	IDNumber      string `json:"id_number" binding:"required"`
	IDType        string `json:"id_type" binding:"required,oneof=nin bvn drivers_license"`
	LicenseNumber string `json:"license_number,omitempty"`
}

// SetOnlineRequest toggles the driver's online flag
type SetOnlineRequest struct {
	Online bool `json:"online"`
}
