package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/repositories"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

// BookingService handles appointment booking logic
type BookingService struct {
	repo       repositories.AppointmentRepository
	doctorRepo repositories.DoctorRepository
	userRepo   repositories.UserRepository
	currency   string
}

// NewBookingService creates a new booking service
func NewBookingService(
	repo repositories.AppointmentRepository,
	doctorRepo repositories.DoctorRepository,
	userRepo repositories.UserRepository,
	currency string,
) *BookingService {
	return &BookingService{
		repo:       repo,
		doctorRepo: doctorRepo,
		userRepo:   userRepo,
		currency:   currency,
	}
}

// BookInput carries the booking payload
type BookInput struct {
	DoctorID string `json:"doctor_id"`
	SlotDate string `json:"slot_date"`
	SlotTime string `json:"slot_time"`
}

// Book books an appointment for the user. The slot claim and the
// appointment insert commit atomically; on a slot race exactly one
// caller succeeds.
func (s *BookingService) Book(ctx context.Context, userID string, input BookInput) (*entities.Appointment, error) {
	if strings.TrimSpace(input.DoctorID) == "" {
		return nil, apperrors.NewValidationError("doctor_id is required")
	}
	slotTime := strings.TrimSpace(input.SlotTime)
	if slotTime == "" {
		return nil, apperrors.NewValidationError("slot_time is required")
	}

	slotDate, err := entities.ParseSlotDate(input.SlotDate)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if slotDate.Before(time.Now().Truncate(24 * time.Hour)) {
		return nil, apperrors.NewValidationError("cannot book an appointment in the past")
	}

	doctor, err := s.doctorRepo.GetByID(ctx, input.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.Available {
		return nil, apperrors.NewUnavailableError("doctor is not available for booking")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Only an active booking for the same slot is a duplicate; the same
	// doctor can be booked for other dates and times.
	hasActive, err := s.repo.HasActive(ctx, userID, doctor.ID, slotDate, slotTime)
	if err != nil {
		return nil, err
	}
	if hasActive {
		return nil, apperrors.NewConflictError("you already have an active appointment for this slot")
	}

	now := time.Now()
	appointment := &entities.Appointment{
		ID:               uuid.New().String(),
		UserID:           user.ID,
		DocID:            doctor.ID,
		UserName:         user.Name,
		UserEmail:        user.Email,
		DoctorName:       doctor.Name,
		DoctorSpeciality: doctor.Speciality,
		DoctorAddress:    doctorAddress(doctor),
		SlotDate:         slotDate,
		SlotTime:         slotTime,
		Amount:           doctor.Fees,
		Currency:         s.currency,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.BookWithSlot(ctx, appointment); err != nil {
		return nil, err
	}

	log.Info().Str("appointment_id", appointment.ID).Str("doctor_id", doctor.ID).
		Str("slot_date", appointment.SlotDateKey()).Str("slot_time", appointment.SlotTime).
		Msg("appointment booked")

	return appointment, nil
}

// Cancel cancels an appointment and frees its slot. Users may only
// cancel their own; admins may cancel any. Repeated cancellation is a
// no-op success. Cancelling does not refund a captured payment.
func (s *BookingService) Cancel(ctx context.Context, userID, appointmentID string, isAdmin bool) error {
	appointment, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}

	if !isAdmin && appointment.UserID != userID {
		return apperrors.NewUnauthorizedError("appointment does not belong to this user")
	}

	if appointment.Cancelled {
		return nil
	}

	if err := s.repo.CancelWithSlot(ctx, appointmentID); err != nil {
		// A concurrent cancel won the conditional update.
		if apperrors.IsType(err, apperrors.ErrorTypeAlreadyCancelled) {
			return nil
		}
		return err
	}

	log.Info().Str("appointment_id", appointmentID).Bool("by_admin", isAdmin).
		Msg("appointment cancelled")

	return nil
}

// ListForUser returns the user's appointments, newest first
func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]*entities.Appointment, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetForUser returns one appointment, enforcing ownership
func (s *BookingService) GetForUser(ctx context.Context, userID, appointmentID string) (*entities.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.UserID != userID {
		return nil, apperrors.NewUnauthorizedError("appointment does not belong to this user")
	}
	return appointment, nil
}

// ListAll returns appointments matching the filters, for admin views
func (s *BookingService) ListAll(ctx context.Context, filters repositories.AppointmentFilters) ([]*entities.Appointment, error) {
	return s.repo.List(ctx, filters)
}

// MarkCompleted marks an appointment as completed, for admin views
func (s *BookingService) MarkCompleted(ctx context.Context, appointmentID string) error {
	appointment, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appointment.Cancelled {
		return apperrors.NewAlreadyCancelledError("cannot complete a cancelled appointment")
	}
	return s.repo.MarkCompleted(ctx, appointmentID)
}

func doctorAddress(doctor *entities.Doctor) string {
	if doctor.AddressLine2 == "" {
		return doctor.AddressLine1
	}
	return fmt.Sprintf("%s, %s", doctor.AddressLine1, doctor.AddressLine2)
}
