package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ederjesus1004/Prescito-Doctor/internal/api/handlers"
	"github.com/ederjesus1004/Prescito-Doctor/internal/api/middleware"
	"github.com/ederjesus1004/Prescito-Doctor/internal/application/services"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/providers"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/auth"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) InitiateCheckout(ctx context.Context, userID, providerName string, input services.CheckoutInput) (*providers.PaymentSession, error) {
	args := m.Called(ctx, userID, providerName, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.PaymentSession), args.Error(1)
}

func (m *MockPaymentService) Reconcile(ctx context.Context, userID, providerName, appointmentID string) (*entities.Appointment, error) {
	args := m.Called(ctx, userID, providerName, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func TestPaymentHandler_Initiate(t *testing.T) {
	tokens := testTokenManager()
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	t.Run("returns the session reference and redirect url", func(t *testing.T) {
		service := new(MockPaymentService)
		handler := handlers.NewPaymentHandler(service)

		service.On("InitiateCheckout", mock.Anything, "user-1", "stripe", services.CheckoutInput{
			AppointmentID: "appt-1",
		}).Return(&providers.PaymentSession{Ref: "cs_123", RedirectURL: "https://pay.test/cs_123"}, nil)

		req := httptest.NewRequest("POST", "/api/payments/stripe/initiate",
			strings.NewReader(`{"appointment_id":"appt-1"}`))
		req.SetPathValue("provider", "stripe")
		req.Header.Set("Authorization", bearerToken(t, tokens, "user-1", auth.RoleUser))
		rec := httptest.NewRecorder()

		authMiddleware.RequireAuth(handler.Initiate)(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeResponse(t, rec)
		assert.Equal(t, "cs_123", body["session_ref"])
		assert.Equal(t, "https://pay.test/cs_123", body["redirect_url"])
		service.AssertExpectations(t)
	})

	t.Run("maps an already paid appointment to conflict", func(t *testing.T) {
		service := new(MockPaymentService)
		handler := handlers.NewPaymentHandler(service)

		service.On("InitiateCheckout", mock.Anything, "user-1", "stripe", mock.Anything).
			Return(nil, apperrors.NewAlreadyPaidError("appointment already paid"))

		req := httptest.NewRequest("POST", "/api/payments/stripe/initiate",
			strings.NewReader(`{"appointment_id":"appt-1"}`))
		req.SetPathValue("provider", "stripe")
		req.Header.Set("Authorization", bearerToken(t, tokens, "user-1", auth.RoleUser))
		rec := httptest.NewRecorder()

		authMiddleware.RequireAuth(handler.Initiate)(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("maps a gateway failure to bad gateway", func(t *testing.T) {
		service := new(MockPaymentService)
		handler := handlers.NewPaymentHandler(service)

		service.On("InitiateCheckout", mock.Anything, "user-1", "stripe", mock.Anything).
			Return(nil, apperrors.NewExternalError("stripe request failed", nil))

		req := httptest.NewRequest("POST", "/api/payments/stripe/initiate",
			strings.NewReader(`{"appointment_id":"appt-1"}`))
		req.SetPathValue("provider", "stripe")
		req.Header.Set("Authorization", bearerToken(t, tokens, "user-1", auth.RoleUser))
		rec := httptest.NewRecorder()

		authMiddleware.RequireAuth(handler.Initiate)(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestPaymentHandler_Reconcile(t *testing.T) {
	tokens := testTokenManager()
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	t.Run("returns the reconciled appointment", func(t *testing.T) {
		service := new(MockPaymentService)
		handler := handlers.NewPaymentHandler(service)

		service.On("Reconcile", mock.Anything, "user-1", "paypal", "appt-1").
			Return(&entities.Appointment{ID: "appt-1", Paid: true}, nil)

		req := httptest.NewRequest("POST", "/api/payments/paypal/reconcile",
			strings.NewReader(`{"appointment_id":"appt-1"}`))
		req.SetPathValue("provider", "paypal")
		req.Header.Set("Authorization", bearerToken(t, tokens, "user-1", auth.RoleUser))
		rec := httptest.NewRecorder()

		authMiddleware.RequireAuth(handler.Reconcile)(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeResponse(t, rec)
		appointment := body["appointment"].(map[string]interface{})
		assert.Equal(t, true, appointment["paid"])
		service.AssertExpectations(t)
	})

	t.Run("short-circuits an abandoned checkout without touching the provider", func(t *testing.T) {
		service := new(MockPaymentService)
		handler := handlers.NewPaymentHandler(service)

		req := httptest.NewRequest("POST", "/api/payments/stripe/reconcile",
			strings.NewReader(`{"appointment_id":"appt-1","success":false}`))
		req.SetPathValue("provider", "stripe")
		req.Header.Set("Authorization", bearerToken(t, tokens, "user-1", auth.RoleUser))
		rec := httptest.NewRecorder()

		authMiddleware.RequireAuth(handler.Reconcile)(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeResponse(t, rec)
		assert.Equal(t, false, body["success"])
		service.AssertNotCalled(t, "Reconcile")
	})

	t.Run("maps an unverified capture to bad request", func(t *testing.T) {
		service := new(MockPaymentService)
		handler := handlers.NewPaymentHandler(service)

		service.On("Reconcile", mock.Anything, "user-1", "stripe", "appt-1").
			Return(nil, apperrors.NewValidationError("payment has not been completed"))

		req := httptest.NewRequest("POST", "/api/payments/stripe/reconcile",
			strings.NewReader(`{"appointment_id":"appt-1"}`))
		req.SetPathValue("provider", "stripe")
		req.Header.Set("Authorization", bearerToken(t, tokens, "user-1", auth.RoleUser))
		rec := httptest.NewRecorder()

		authMiddleware.RequireAuth(handler.Reconcile)(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeResponse(t, rec)
		assert.Equal(t, "payment has not been completed", body["message"])
	})
}
