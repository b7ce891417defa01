package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/providers"
)

func newTestStripeAdapter(serverURL string) *StripeAdapter {
	return &StripeAdapter{
		secretKey: "sk_test_123",
		client:    &http.Client{Timeout: 5 * time.Second},
		baseURL:   serverURL,
	}
}

func TestStripeAdapter_CreateSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.Form.Get("mode"))
		assert.Equal(t, "usd", r.Form.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "5000", r.Form.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "appt-1", r.Form.Get("metadata[appointment_id]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.test/cs_test_1"}`))
	}))
	defer server.Close()

	adapter := newTestStripeAdapter(server.URL)
	session, err := adapter.CreateSession(context.Background(), providers.CheckoutRequest{
		AppointmentID: "appt-1",
		Description:   "Appointment with Dr. Richard James",
		Amount:        5000,
		Currency:      "USD",
		SuccessURL:    "https://app.test/success",
		CancelURL:     "https://app.test/cancel",
	})

	assert.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.Ref)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", session.RedirectURL)
}

func TestStripeAdapter_VerifyCapture(t *testing.T) {
	tests := []struct {
		name          string
		paymentStatus string
		wantCaptured  bool
	}{
		{"paid session verifies", "paid", true},
		{"unpaid session does not verify", "unpaid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "GET", r.Method)
				assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"id":"cs_test_1","payment_status":"` + tt.paymentStatus + `"}`))
			}))
			defer server.Close()

			adapter := newTestStripeAdapter(server.URL)
			captured, err := adapter.VerifyCapture(context.Background(), "cs_test_1")

			assert.NoError(t, err)
			assert.Equal(t, tt.wantCaptured, captured)
		})
	}
}

func TestStripeAdapter_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	adapter := newTestStripeAdapter(server.URL)
	_, err := adapter.VerifyCapture(context.Background(), "cs_test_1")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
