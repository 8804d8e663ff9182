package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/haulport/logistics-backend/pkg/resilience"
)

// RedirectProvider integrates a hosted-page gateway: the customer is sent
// to the gateway URL and the result is confirmed by polling the status
// endpoint. Requests are HMAC-SHA256 signed with the shared secret.
type RedirectProvider struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	breaker    *resilience.Breaker
	retry      resilience.RetryConfig
}

// NewRedirectProvider creates a redirect gateway client
func NewRedirectProvider(baseURL, secret string) *RedirectProvider {
	return &RedirectProvider{
		baseURL:    baseURL,
		secret:     secret,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		breaker: resilience.NewBreaker(resilience.Settings{
			Name:             "redirect-gateway",
			Interval:         60,
			Timeout:          30,
			FailureThreshold: 5,
		}),
		retry: resilience.DefaultRetryConfig(),
	}
}

// Name returns the provider identifier
func (p *RedirectProvider) Name() string { return "redirect" }

type redirectInitPayload struct {
	Reference string            `json:"reference"`
	Amount    float64           `json:"amount"`
	Currency  string            `json:"currency"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type redirectInitResponse struct {
	Reference  string `json:"reference"`
	PaymentURL string `json:"payment_url"`
}

type redirectStatusResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// Initialize registers the charge with the gateway and returns the hosted
// payment page URL
func (p *RedirectProvider) Initialize(ctx context.Context, reference string, amount float64, currency string, metadata map[string]string) (*InitResult, error) {
	body, err := json.Marshal(redirectInitPayload{
		Reference: reference,
		Amount:    amount,
		Currency:  currency,
		Metadata:  metadata,
	})
	if err != nil {
		return nil, err
	}

	raw, err := p.do(ctx, http.MethodPost, "/v1/charges", body)
	if err != nil {
		return nil, err
	}

	var resp redirectInitResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("redirect gateway response: %w", err)
	}

	return &InitResult{
		Reference:   resp.Reference,
		RedirectURL: resp.PaymentURL,
	}, nil
}

// Verify polls the gateway for the charge outcome
func (p *RedirectProvider) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	raw, err := p.do(ctx, http.MethodGet, "/v1/charges/"+reference, nil)
	if err != nil {
		return nil, err
	}

	var resp redirectStatusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("redirect gateway response: %w", err)
	}

	status := IntentPending
	switch resp.Status {
	case "success":
		status = IntentSucceeded
	case "failed", "abandoned":
		status = IntentFailed
	}

	return &VerifyResult{Reference: resp.Reference, Status: status}, nil
}

// do issues a signed request through the circuit breaker with retries
func (p *RedirectProvider) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	result, err := p.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return resilience.Retry(ctx, p.retry, func(ctx context.Context) (interface{}, error) {
			return p.doOnce(ctx, method, path, body)
		})
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (p *RedirectProvider) doOnce(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", p.sign(body))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("redirect gateway returned %d", resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, resilience.Permanent(
			fmt.Errorf("redirect gateway rejected request: %d %s", resp.StatusCode, string(raw)))
	}
	return raw, nil
}

func (p *RedirectProvider) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(p.secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCallbackSignature checks the gateway's callback signature
func (p *RedirectProvider) VerifyCallbackSignature(body []byte, signature string) bool {
	return hmac.Equal([]byte(p.sign(body)), []byte(signature))
}
