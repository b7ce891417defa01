package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ederjesus1004/Prescito-Doctor/internal/api/middleware"
	"github.com/ederjesus1004/Prescito-Doctor/internal/application/services"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/repositories"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

// BookingService defines the booking operations the handler depends on
type BookingService interface {
	Book(ctx context.Context, userID string, input services.BookInput) (*entities.Appointment, error)
	Cancel(ctx context.Context, userID, appointmentID string, isAdmin bool) error
	ListForUser(ctx context.Context, userID string) ([]*entities.Appointment, error)
	GetForUser(ctx context.Context, userID, appointmentID string) (*entities.Appointment, error)
	ListAll(ctx context.Context, filters repositories.AppointmentFilters) ([]*entities.Appointment, error)
	MarkCompleted(ctx context.Context, appointmentID string) error
}

// BookingHandler handles appointment HTTP requests
type BookingHandler struct {
	service BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Book handles POST /api/appointments
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var input services.BookInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, apperrors.NewValidationError("invalid request body"))
		return
	}

	appointment, err := h.service.Book(r.Context(), userID, input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "appointment booked", map[string]interface{}{
		"appointment": appointment,
	})
}

// ListMine handles GET /api/appointments
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	appointments, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "appointments", map[string]interface{}{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

// Get handles GET /api/appointments/{id}
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	appointment, err := h.service.GetForUser(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "appointment", map[string]interface{}{
		"appointment": appointment,
	})
}

// Cancel handles POST /api/appointments/{id}/cancel
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	if err := h.service.Cancel(r.Context(), userID, r.PathValue("id"), false); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "appointment cancelled", nil)
}

// AdminList handles GET /api/admin/appointments
func (h *BookingHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	filters := repositories.AppointmentFilters{
		DoctorID: r.URL.Query().Get("doctor_id"),
		UserID:   r.URL.Query().Get("user_id"),
	}
	if v := r.URL.Query().Get("cancelled"); v != "" {
		cancelled := v == "true"
		filters.Cancelled = &cancelled
	}
	if v := r.URL.Query().Get("paid"); v != "" {
		paid := v == "true"
		filters.Paid = &paid
	}

	appointments, err := h.service.ListAll(r.Context(), filters)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "appointments", map[string]interface{}{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

// AdminCancel handles POST /api/admin/appointments/{id}/cancel
func (h *BookingHandler) AdminCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(r.Context(), "", r.PathValue("id"), true); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "appointment cancelled", nil)
}

// AdminComplete handles POST /api/admin/appointments/{id}/complete
func (h *BookingHandler) AdminComplete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkCompleted(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "appointment completed", nil)
}
