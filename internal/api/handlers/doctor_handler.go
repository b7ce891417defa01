package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ederjesus1004/Prescito-Doctor/internal/application/services"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/repositories"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

// DoctorService defines the doctor operations the handler depends on
type DoctorService interface {
	List(ctx context.Context, filters repositories.DoctorFilters) ([]*entities.Doctor, error)
	Get(ctx context.Context, id string) (*entities.Doctor, entities.SlotMap, error)
	AddDoctor(ctx context.Context, input services.AddDoctorInput) (*entities.Doctor, error)
	SetAvailability(ctx context.Context, id string, available bool) error
}

// DoctorHandler handles doctor HTTP requests
type DoctorHandler struct {
	service DoctorService
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(service DoctorService) *DoctorHandler {
	return &DoctorHandler{service: service}
}

// ListDoctors handles GET /api/doctors
func (h *DoctorHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	filters := repositories.DoctorFilters{
		Speciality:    r.URL.Query().Get("speciality"),
		AvailableOnly: r.URL.Query().Get("available") == "true",
	}

	doctors, err := h.service.List(r.Context(), filters)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "doctors", map[string]interface{}{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// GetDoctor handles GET /api/doctors/{id}
func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctor, slots, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "doctor", map[string]interface{}{
		"doctor":       doctor,
		"slots_booked": slots,
	})
}

// AddDoctor handles POST /api/admin/doctors
func (h *DoctorHandler) AddDoctor(w http.ResponseWriter, r *http.Request) {
	var input services.AddDoctorInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, apperrors.NewValidationError("invalid request body"))
		return
	}

	doctor, err := h.service.AddDoctor(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "doctor added", map[string]interface{}{
		"doctor": doctor,
	})
}

// SetAvailability handles PATCH /api/admin/doctors/{id}/availability
func (h *DoctorHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("invalid request body"))
		return
	}

	if err := h.service.SetAvailability(r.Context(), r.PathValue("id"), req.Available); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "availability updated", nil)
}
