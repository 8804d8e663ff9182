// Package settlement computes the fee/earning split applied when an order
// completes. All functions are pure; business knobs come in as arguments.
package settlement

import "math"

// Breakdown is the result of settling an order amount.
type Breakdown struct {
	PlatformFee   float64 `json:"platform_fee"`
	DriverEarning float64 `json:"driver_earning"`
	CreditAmount  float64 `json:"credit_amount"`
}

// Round2 rounds half-up to 2 decimal places. Monetary values are stored at
// this precision, so rounding is applied at every intermediate step, not only
// at the end.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// Calculate splits an order amount into platform fee and driver earning, and
// adds the tip pass-through to produce the wallet credit amount.
func Calculate(amount, tipAmount, feePercent float64) Breakdown {
	platformFee := Round2(amount * feePercent / 100)
	driverEarning := Round2(amount - platformFee)
	creditAmount := Round2(driverEarning + tipAmount)

	return Breakdown{
		PlatformFee:   platformFee,
		DriverEarning: driverEarning,
		CreditAmount:  creditAmount,
	}
}
