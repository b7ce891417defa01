package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ederjesus1004/Prescito-Doctor/internal/application/services"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

// ContactService defines the contact operations the handler depends on
type ContactService interface {
	Submit(ctx context.Context, input services.SubmitInput) (*entities.ContactMessage, error)
	List(ctx context.Context) ([]*entities.ContactMessage, error)
	UpdateStatus(ctx context.Context, id string, status entities.ContactStatus) error
}

// ContactHandler handles contact form HTTP requests
type ContactHandler struct {
	service ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(service ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// Submit handles POST /api/contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input services.SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, apperrors.NewValidationError("invalid request body"))
		return
	}

	message, err := h.service.Submit(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "message received", map[string]interface{}{
		"contact": message,
	})
}

// AdminList handles GET /api/admin/contact-messages
func (h *ContactHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "contact messages", map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}

// AdminUpdateStatus handles PATCH /api/admin/contact-messages/{id}
func (h *ContactHandler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status entities.ContactStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("invalid request body"))
		return
	}

	if err := h.service.UpdateStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "status updated", nil)
}
