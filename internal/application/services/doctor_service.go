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

// DoctorService handles doctor browsing and administration
type DoctorService struct {
	repo repositories.DoctorRepository
}

// NewDoctorService creates a new doctor service
func NewDoctorService(repo repositories.DoctorRepository) *DoctorService {
	return &DoctorService{repo: repo}
}

// List returns doctors matching the filters
func (s *DoctorService) List(ctx context.Context, filters repositories.DoctorFilters) ([]*entities.Doctor, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one doctor with their booked slot map
func (s *DoctorService) Get(ctx context.Context, id string) (*entities.Doctor, entities.SlotMap, error) {
	doctor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	slots, err := s.repo.SlotMap(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return doctor, slots, nil
}

// AddDoctorInput carries the admin payload for creating a doctor
type AddDoctorInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Speciality   string `json:"speciality"`
	Degree       string `json:"degree"`
	Experience   string `json:"experience"`
	About        string `json:"about"`
	Fees         int64  `json:"fees"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	ImageURL     string `json:"image_url"`
}

// AddDoctor creates a doctor profile, available by default
func (s *DoctorService) AddDoctor(ctx context.Context, input AddDoctorInput) (*entities.Doctor, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Speciality = strings.TrimSpace(input.Speciality)

	if input.Name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, apperrors.NewValidationError("a valid email is required")
	}
	if input.Speciality == "" {
		return nil, apperrors.NewValidationError("speciality is required")
	}
	if input.Fees <= 0 {
		return nil, apperrors.NewValidationError("fees must be positive")
	}

	now := time.Now()
	doctor := &entities.Doctor{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		Speciality:   input.Speciality,
		Degree:       input.Degree,
		Experience:   input.Experience,
		About:        input.About,
		Fees:         input.Fees,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		ImageURL:     input.ImageURL,
		Available:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, err
	}

	return doctor, nil
}

// SetAvailability toggles a doctor's availability
func (s *DoctorService) SetAvailability(ctx context.Context, id string, available bool) error {
	return s.repo.SetAvailability(ctx, id, available)
}
