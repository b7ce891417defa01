package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/repositories"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

// ContactService handles contact form submissions
type ContactService struct {
	repo repositories.ContactRepository
}

// NewContactService creates a new contact service
func NewContactService(repo repositories.ContactRepository) *ContactService {
	return &ContactService{repo: repo}
}

// SubmitInput carries the contact form payload
type SubmitInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Submit stores a contact message
func (s *ContactService) Submit(ctx context.Context, input SubmitInput) (*entities.ContactMessage, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Message = strings.TrimSpace(input.Message)

	if input.Name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(input.Email)); err != nil {
		return nil, apperrors.NewValidationError("a valid email is required")
	}
	if input.Message == "" {
		return nil, apperrors.NewValidationError("message is required")
	}

	message := &entities.ContactMessage{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Email:     strings.TrimSpace(input.Email),
		Phone:     input.Phone,
		Subject:   input.Subject,
		Message:   input.Message,
		Status:    entities.ContactStatusNew,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}

// List returns all contact messages, for admin views
func (s *ContactService) List(ctx context.Context) ([]*entities.ContactMessage, error) {
	return s.repo.List(ctx)
}

// UpdateStatus updates a message's handling status
func (s *ContactService) UpdateStatus(ctx context.Context, id string, status entities.ContactStatus) error {
	switch status {
	case entities.ContactStatusNew, entities.ContactStatusRead, entities.ContactStatusAnswered:
	default:
		return apperrors.NewValidationError("invalid contact status")
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
