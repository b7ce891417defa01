package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ederjesus1004/Prescito-Doctor/internal/api/middleware"
	"github.com/ederjesus1004/Prescito-Doctor/internal/application/services"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/providers"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

// PaymentService defines the payment operations the handler depends on
type PaymentService interface {
	InitiateCheckout(ctx context.Context, userID, providerName string, input services.CheckoutInput) (*providers.PaymentSession, error)
	Reconcile(ctx context.Context, userID, providerName, appointmentID string) (*entities.Appointment, error)
}

// PaymentHandler handles payment HTTP requests
type PaymentHandler struct {
	service PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Initiate handles POST /api/payments/{provider}/initiate
func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var input services.CheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, apperrors.NewValidationError("invalid request body"))
		return
	}

	session, err := h.service.InitiateCheckout(r.Context(), userID, r.PathValue("provider"), input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "checkout session created", map[string]interface{}{
		"session_ref":  session.Ref,
		"redirect_url": session.RedirectURL,
	})
}

type reconcileRequest struct {
	AppointmentID string `json:"appointment_id"`
	// Success carries the redirect outcome the client observed. It can
	// short-circuit an abandoned checkout; it never confirms a payment
	// on its own.
	Success *bool `json:"success"`
}

// Reconcile handles POST /api/payments/{provider}/reconcile
func (h *PaymentHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("invalid request body"))
		return
	}

	if req.Success != nil && !*req.Success {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"message": "payment was not completed",
		})
		return
	}

	appointment, err := h.service.Reconcile(r.Context(), userID, r.PathValue("provider"), req.AppointmentID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "payment confirmed", map[string]interface{}{
		"appointment": appointment,
	})
}
