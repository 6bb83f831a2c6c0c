package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travel-booking/internal/gateway"
	"travel-booking/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newGateway(t *testing.T, baseURL string) gateway.Gateway {
	t.Helper()
	return gateway.NewChapaGateway(utils.ChapaConfig{
		SecretKey: "test-secret",
		BaseURL:   baseURL,
		Timeout:   2 * time.Second,
	}, zaptest.NewLogger(t))
}

func initiateRequest() gateway.InitiateRequest {
	return gateway.InitiateRequest{
		Amount:      4500,
		Currency:    "ETB",
		Email:       "guest@example.com",
		FirstName:   "Abebe",
		LastName:    "Kebede",
		TxRef:       "booking_test_deadbeef",
		CallbackURL: "https://booking.example.com/api/payments/callback",
		ReturnURL:   "https://booking.example.com/done",
	}
}

func TestInitiate_Accepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer test-secret", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "4500.00", body["amount"])
		assert.Equal(t, "ETB", body["currency"])
		assert.Equal(t, "booking_test_deadbeef", body["tx_ref"])

		json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Hosted Link",
			"data":    map[string]string{"checkout_url": "https://checkout.chapa.co/pay/xyz"},
		})
	}))
	defer server.Close()

	result := newGateway(t, server.URL).Initiate(context.Background(), initiateRequest())

	assert.True(t, result.Accepted)
	assert.Equal(t, "https://checkout.chapa.co/pay/xyz", result.CheckoutURL)
}

func TestInitiate_ProviderRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "failed",
			"message": "Invalid currency",
		})
	}))
	defer server.Close()

	result := newGateway(t, server.URL).Initiate(context.Background(), initiateRequest())

	assert.False(t, result.Accepted)
	assert.Equal(t, "Invalid currency", result.Reason)
}

func TestInitiate_SuccessBodyRequired(t *testing.T) {
	// 200 with a non-success envelope still counts as rejected.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "maintenance"})
	}))
	defer server.Close()

	result := newGateway(t, server.URL).Initiate(context.Background(), initiateRequest())

	assert.False(t, result.Accepted)
	assert.Equal(t, "maintenance", result.Reason)
}

func TestInitiate_ProviderUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	result := newGateway(t, server.URL).Initiate(context.Background(), initiateRequest())

	assert.False(t, result.Accepted)
	assert.Equal(t, "payment provider unreachable", result.Reason)
}

func TestVerify_Confirmed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/transaction/verify/booking_test_deadbeef", r.URL.Path)
		assert.Equal(t, "Bearer test-secret", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]string{"status": "success"},
		})
	}))
	defer server.Close()

	result := newGateway(t, server.URL).Verify(context.Background(), "booking_test_deadbeef")

	assert.Equal(t, gateway.ProviderConfirmed, result.Status)
}

func TestVerify_DeniedVerdicts(t *testing.T) {
	for _, providerStatus := range []string{"failed", "cancelled"} {
		t.Run(providerStatus, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"status": "success",
					"data":   map[string]string{"status": providerStatus},
				})
			}))
			defer server.Close()

			result := newGateway(t, server.URL).Verify(context.Background(), "booking_test_deadbeef")

			assert.Equal(t, gateway.ProviderDenied, result.Status)
		})
	}
}

func TestVerify_PendingIsUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]string{"status": "pending"},
		})
	}))
	defer server.Close()

	result := newGateway(t, server.URL).Verify(context.Background(), "booking_test_deadbeef")

	assert.Equal(t, gateway.ProviderUnknown, result.Status)
}

func TestVerify_ServerErrorIsUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	result := newGateway(t, server.URL).Verify(context.Background(), "booking_test_deadbeef")

	assert.Equal(t, gateway.ProviderUnknown, result.Status)
}

func TestVerify_TimeoutIsUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	gw := gateway.NewChapaGateway(utils.ChapaConfig{
		SecretKey: "test-secret",
		BaseURL:   server.URL,
		Timeout:   50 * time.Millisecond,
	}, zaptest.NewLogger(t))

	result := gw.Verify(context.Background(), "booking_test_deadbeef")

	// A timed-out verify is ambiguous: the charge may have succeeded.
	assert.Equal(t, gateway.ProviderUnknown, result.Status)
}
