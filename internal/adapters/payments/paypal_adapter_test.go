package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/providers"
)

func newTestPayPalAdapter(serverURL string) *PayPalAdapter {
	return &PayPalAdapter{
		clientID:     "client-id",
		clientSecret: "client-secret",
		client:       &http.Client{Timeout: 5 * time.Second},
		baseURL:      serverURL,
	}
}

func paypalTokenResponse(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"access_token":"token-abc","expires_in":3600}`))
}

func TestPayPalAdapter_CreateSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client-id", user)
			assert.Equal(t, "client-secret", pass)
			paypalTokenResponse(w)
		case "/v2/checkout/orders":
			assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))

			var payload map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "CAPTURE", payload["intent"])

			units := payload["purchase_units"].([]interface{})
			amount := units[0].(map[string]interface{})["amount"].(map[string]interface{})
			assert.Equal(t, "50.00", amount["value"])
			assert.Equal(t, "USD", amount["currency_code"])

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"ORDER-1","links":[
				{"rel":"self","href":"https://paypal.test/orders/ORDER-1"},
				{"rel":"approve","href":"https://paypal.test/approve/ORDER-1"}]}`))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	}))
	defer server.Close()

	adapter := newTestPayPalAdapter(server.URL)
	session, err := adapter.CreateSession(context.Background(), providers.CheckoutRequest{
		AppointmentID: "appt-1",
		Amount:        5000,
		Currency:      "usd",
	})

	assert.NoError(t, err)
	assert.Equal(t, "ORDER-1", session.Ref)
	assert.Equal(t, "https://paypal.test/approve/ORDER-1", session.RedirectURL)
}

func TestPayPalAdapter_VerifyCapture(t *testing.T) {
	t.Run("completed order verifies without capture call", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/v1/oauth2/token":
				paypalTokenResponse(w)
			case "/v2/checkout/orders/ORDER-1":
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"id":"ORDER-1","status":"COMPLETED"}`))
			default:
				t.Errorf("unexpected request to %s", r.URL.Path)
			}
		}))
		defer server.Close()

		adapter := newTestPayPalAdapter(server.URL)
		captured, err := adapter.VerifyCapture(context.Background(), "ORDER-1")

		assert.NoError(t, err)
		assert.True(t, captured)
	})

	t.Run("approved order is captured", func(t *testing.T) {
		captureCalled := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/v1/oauth2/token":
				paypalTokenResponse(w)
			case "/v2/checkout/orders/ORDER-1":
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"id":"ORDER-1","status":"APPROVED"}`))
			case "/v2/checkout/orders/ORDER-1/capture":
				captureCalled = true
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"id":"ORDER-1","status":"COMPLETED"}`))
			default:
				t.Errorf("unexpected request to %s", r.URL.Path)
			}
		}))
		defer server.Close()

		adapter := newTestPayPalAdapter(server.URL)
		captured, err := adapter.VerifyCapture(context.Background(), "ORDER-1")

		assert.NoError(t, err)
		assert.True(t, captured)
		assert.True(t, captureCalled)
	})

	t.Run("created order does not verify", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/v1/oauth2/token":
				paypalTokenResponse(w)
			case "/v2/checkout/orders/ORDER-1":
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"id":"ORDER-1","status":"CREATED"}`))
			default:
				t.Errorf("unexpected request to %s", r.URL.Path)
			}
		}))
		defer server.Close()

		adapter := newTestPayPalAdapter(server.URL)
		captured, err := adapter.VerifyCapture(context.Background(), "ORDER-1")

		assert.NoError(t, err)
		assert.False(t, captured)
	})
}

func TestPayPalAdapter_TokenReuse(t *testing.T) {
	tokenRequests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			tokenRequests++
			paypalTokenResponse(w)
		case "/v2/checkout/orders/ORDER-1":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"ORDER-1","status":"COMPLETED"}`))
		}
	}))
	defer server.Close()

	adapter := newTestPayPalAdapter(server.URL)
	for i := 0; i < 3; i++ {
		_, err := adapter.VerifyCapture(context.Background(), "ORDER-1")
		assert.NoError(t, err)
	}

	assert.Equal(t, 1, tokenRequests, "token should be cached across calls")
}

func TestFormatMinorUnits(t *testing.T) {
	assert.Equal(t, "50.00", formatMinorUnits(5000))
	assert.Equal(t, "0.05", formatMinorUnits(5))
	assert.Equal(t, "12.34", formatMinorUnits(1234))
}
