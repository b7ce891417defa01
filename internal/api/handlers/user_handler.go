package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ederjesus1004/Prescito-Doctor/internal/api/middleware"
	"github.com/ederjesus1004/Prescito-Doctor/internal/application/services"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

// UserService defines the user operations the handler depends on
type UserService interface {
	Register(ctx context.Context, input services.RegisterInput) (*entities.User, string, error)
	Login(ctx context.Context, email, password string) (*entities.User, string, error)
	AdminLogin(ctx context.Context, email, password string) (string, error)
	GetProfile(ctx context.Context, userID string) (*entities.User, error)
	UpdateProfile(ctx context.Context, userID string, input services.UpdateProfileInput) (*entities.User, error)
}

// UserHandler handles user HTTP requests
type UserHandler struct {
	service UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Register handles POST /api/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, apperrors.NewValidationError("invalid request body"))
		return
	}

	user, token, err := h.service.Register(r.Context(), input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "account created", map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("invalid request body"))
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "logged in", map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// AdminLogin handles POST /api/admin/login
func (h *UserHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("invalid request body"))
		return
	}

	token, err := h.service.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "logged in", map[string]interface{}{
		"token": token,
	})
}

// GetProfile handles GET /api/users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "profile", map[string]interface{}{
		"user": user,
	})
}

// UpdateProfile handles PUT /api/users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var input services.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, apperrors.NewValidationError("invalid request body"))
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "profile updated", map[string]interface{}{
		"user": user,
	})
}
