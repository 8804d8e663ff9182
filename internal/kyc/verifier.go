// Package kyc wraps the external identity verification capability consumed
// by driver onboarding. The provider call is external; only its resulting
// status gates order claims.
package kyc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/haulport/logistics-backend/pkg/resilience"
)

// Status is the provider's verification outcome
type Status string

const (
	StatusVerified Status = "verified"
	StatusFailed   Status = "failed"
)

// Result is the outcome of a verification call
type Result struct {
	Status    Status          `json:"status"`
	Reference string          `json:"reference"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// Verifier is the identity verification capability
type Verifier interface {
	Verify(ctx context.Context, inputs map[string]string) (*Result, error)
}

// HTTPVerifier calls a verification provider over HTTP
type HTTPVerifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
	retry   resilience.RetryConfig
}

// NewHTTPVerifier creates an HTTP-backed verifier
func NewHTTPVerifier(baseURL, apiKey string) *HTTPVerifier {
	return &HTTPVerifier{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		retry:   resilience.DefaultRetryConfig(),
	}
}

// Verify submits role-specific identity inputs to the provider
func (v *HTTPVerifier) Verify(ctx context.Context, inputs map[string]string) (*Result, error) {
	body, err := json.Marshal(inputs)
	if err != nil {
		return nil, err
	}

	result, err := resilience.Retry(ctx, v.retry, func(ctx context.Context) (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/v1/verify", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+v.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := v.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("verification provider returned %d", resp.StatusCode)
		}

		var out Result
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*Result), nil
}
