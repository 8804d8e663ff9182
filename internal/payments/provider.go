package payments

import "context"

// InitResult is what a gateway returns when a charge is initialized
type InitResult struct {
	Reference    string
	ClientSecret string
	RedirectURL  string
}

// VerifyResult is the gateway's authoritative view of a charge
type VerifyResult struct {
	Reference string
	Status    IntentStatus
}

// Provider abstracts a payment gateway. Implementations must be safe for
// concurrent use.
type Provider interface {
	Name() string
	Initialize(ctx context.Context, reference string, amount float64, currency string, metadata map[string]string) (*InitResult, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}
