package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/haulport/logistics-backend/internal/drivers"
)

// Role is the platform role attached to a user's token
type Role string

const (
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

// User is a platform account. Drivers additionally get a row in the
// drivers table at registration.
type User struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	PhoneNumber   string    `json:"phone_number" db:"phone_number"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	Role          Role      `json:"role" db:"role"`
	WalletBalance float64   `json:"wallet_balance" db:"wallet_balance"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// RegisterRequest creates a new account
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number" binding:"required,min=7,max=20"`
	Password    string `json:"password" binding:"required,min=8"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Role        Role   `json:"role" binding:"required,oneof=customer driver"`

	// Driver-only fields
	DriverRole   drivers.DriverRole `json:"driver_role,omitempty" binding:"omitempty,oneof=rider truck_driver waste_driver"`
	VehiclePlate string             `json:"vehicle_plate,omitempty"`
}

// LoginRequest exchanges credentials for a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries an issued JWT
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}
