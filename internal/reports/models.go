package reports

import (
	"time"

	"github.com/google/uuid"
)

// WalletStatement summarizes a user's ledger activity over a period
type WalletStatement struct {
	UserID           uuid.UUID   `json:"user_id"`
	From             time.Time   `json:"from"`
	To               time.Time   `json:"to"`
	TotalCredits     float64     `json:"total_credits"`
	TotalDebits      float64     `json:"total_debits"`
	NetChange        float64     `json:"net_change"`
	TransactionCount int64       `json:"transaction_count"`
	ClosingBalance   float64     `json:"closing_balance"`
	Days             []DailyLine `json:"days"`
}

// DailyLine is one day of ledger activity
type DailyLine struct {
	Date    time.Time `json:"date"`
	Credits float64   `json:"credits"`
	Debits  float64   `json:"debits"`
}

// PlatformSummary aggregates marketplace activity for admins
type PlatformSummary struct {
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	OrdersCompleted int64     `json:"orders_completed"`
	GrossVolume     float64   `json:"gross_volume"`
	PlatformFees    float64   `json:"platform_fees"`
	DriverEarnings  float64   `json:"driver_earnings"`
	WithdrawalsPaid float64   `json:"withdrawals_paid"`
}
