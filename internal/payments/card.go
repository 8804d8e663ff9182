package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"
)

// CardProvider collects card payments through Stripe payment intents.
// The reference it issues is the Stripe payment intent id.
type CardProvider struct {
	webhookSecret string
}

// NewCardProvider configures the Stripe client
func NewCardProvider(secretKey, webhookSecret string) *CardProvider {
	stripe.Key = secretKey
	return &CardProvider{webhookSecret: webhookSecret}
}

// Name returns the provider identifier
func (p *CardProvider) Name() string { return "card" }

// Initialize creates a payment intent and returns its client secret
func (p *CardProvider) Initialize(ctx context.Context, reference string, amount float64, currency string, metadata map[string]string) (*InitResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.AddMetadata("reference", reference)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}

	return &InitResult{
		Reference:    pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// Verify fetches the payment intent and maps its status
func (p *CardProvider) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(reference, params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent lookup: %w", err)
	}

	return &VerifyResult{
		Reference: pi.ID,
		Status:    mapStripeStatus(pi),
	}, nil
}

// ParseWebhook verifies the Stripe signature and extracts the payment
// intent outcome. A nil result means the event type is not one we act on.
func (p *CardProvider) ParseWebhook(payload []byte, signatureHeader string) (*VerifyResult, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("stripe webhook signature: %w", err)
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed", "payment_intent.canceled":
	default:
		return nil, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("stripe webhook payload: %w", err)
	}

	return &VerifyResult{
		Reference: pi.ID,
		Status:    mapStripeStatus(&pi),
	}, nil
}

func mapStripeStatus(pi *stripe.PaymentIntent) IntentStatus {
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return IntentSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return IntentFailed
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if pi.LastPaymentError != nil {
			return IntentFailed
		}
		return IntentPending
	default:
		return IntentPending
	}
}
