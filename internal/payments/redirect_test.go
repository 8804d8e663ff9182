package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectInitializeSignsRequest(t *testing.T) {
	const secret = "gw-secret"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/charges", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), r.Header.Get("X-Signature"))

		var payload redirectInitPayload
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, 2500.0, payload.Amount)
		assert.Equal(t, "NGN", payload.Currency)

		json.NewEncoder(w).Encode(redirectInitResponse{
			Reference:  payload.Reference,
			PaymentURL: "https://pay.example.com/abc123",
		})
	}))
	defer server.Close()

	provider := NewRedirectProvider(server.URL, secret)
	result, err := provider.Initialize(context.Background(), "intent-1", 2500, "NGN", nil)

	require.NoError(t, err)
	assert.Equal(t, "intent-1", result.Reference)
	assert.Equal(t, "https://pay.example.com/abc123", result.RedirectURL)
}

func TestRedirectVerifyMapsStatuses(t *testing.T) {
	tests := []struct {
		gatewayStatus string
		expected      IntentStatus
	}{
		{"success", IntentSucceeded},
		{"failed", IntentFailed},
		{"abandoned", IntentFailed},
		{"initiated", IntentPending},
	}

	for _, tt := range tests {
		t.Run(tt.gatewayStatus, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(redirectStatusResponse{
					Reference: "ref-9",
					Status:    tt.gatewayStatus,
				})
			}))
			defer server.Close()

			provider := NewRedirectProvider(server.URL, "s")
			result, err := provider.Verify(context.Background(), "ref-9")

			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Status)
		})
	}
}

func TestRedirectRejectedRequestIsNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":"bad currency"}`, http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	provider := NewRedirectProvider(server.URL, "s")
	_, err := provider.Initialize(context.Background(), "intent-2", 100, "XXX", nil)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestVerifyCallbackSignature(t *testing.T) {
	provider := NewRedirectProvider("http://unused", "gw-secret")
	body := []byte(`{"reference":"ref-1","status":"success"}`)

	mac := hmac.New(sha256.New, []byte("gw-secret"))
	mac.Write(body)
	good := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, provider.VerifyCallbackSignature(body, good))
	assert.False(t, provider.VerifyCallbackSignature(body, "deadbeef"))
}
