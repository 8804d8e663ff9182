package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{name: "no fraction", input: 100, expected: 100},
		{name: "two places kept", input: 99.99, expected: 99.99},
		{name: "half rounds up", input: 0.125, expected: 0.13},
		{name: "below half rounds down", input: 0.124, expected: 0.12},
		{name: "above half rounds up", input: 0.126, expected: 0.13},
		{name: "repeating fraction", input: 1.0 / 3.0, expected: 0.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Round2(tt.input))
		})
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name        string
		amount      float64
		tipAmount   float64
		feePercent  float64
		wantFee     float64
		wantEarning float64
		wantCredit  float64
	}{
		{
			name:        "standard order",
			amount:      25000,
			feePercent:  15,
			wantFee:     3750,
			wantEarning: 21250,
			wantCredit:  21250,
		},
		{
			name:        "order with tip",
			amount:      1000,
			tipAmount:   150,
			feePercent:  15,
			wantFee:     150,
			wantEarning: 850,
			wantCredit:  1000,
		},
		{
			name:        "mid-size order",
			amount:      5000,
			feePercent:  15,
			wantFee:     750,
			wantEarning: 4250,
			wantCredit:  4250,
		},
		{
			name:        "fee requires rounding",
			amount:      33.33,
			feePercent:  15,
			wantFee:     5,
			wantEarning: 28.33,
			wantCredit:  28.33,
		},
		{
			name:        "zero fee percent",
			amount:      100,
			feePercent:  0,
			wantFee:     0,
			wantEarning: 100,
			wantCredit:  100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Calculate(tt.amount, tt.tipAmount, tt.feePercent)
			assert.Equal(t, tt.wantFee, b.PlatformFee)
			assert.Equal(t, tt.wantEarning, b.DriverEarning)
			assert.Equal(t, tt.wantCredit, b.CreditAmount)
		})
	}
}

func TestCalculateRoundsEachStep(t *testing.T) {
	// 10.01 at 15% is 1.5015; the fee must round before the earning is
	// derived so fee + earning always reconstructs the amount.
	b := Calculate(10.01, 0, 15)
	assert.Equal(t, 1.5, b.PlatformFee)
	assert.Equal(t, 8.51, b.DriverEarning)
	assert.InDelta(t, 10.01, b.PlatformFee+b.DriverEarning, 1e-9)
}
