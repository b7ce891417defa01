package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondSuccess writes the standard success envelope, merging any
// extra fields alongside success and message.
func respondSuccess(w http.ResponseWriter, statusCode int, message string, extra map[string]interface{}) {
	payload := map[string]interface{}{
		"success": true,
		"message": message,
	}
	for k, v := range extra {
		payload[k] = v
	}
	respondWithJSON(w, statusCode, payload)
}

// respondError maps application error types onto HTTP statuses and
// writes the failure envelope. Internal error details never leak.
func respondError(w http.ResponseWriter, err error) {
	statusCode := statusForError(err)

	message := "internal server error"
	if statusCode != http.StatusInternalServerError {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
	}

	respondWithJSON(w, statusCode, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func statusForError(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeConflict, apperrors.ErrorTypeAlreadyPaid,
		apperrors.ErrorTypeAlreadyCancelled, apperrors.ErrorTypeUnavailable:
		return http.StatusConflict
	case apperrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
