package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/providers"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/repositories"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

// ProviderRegistry resolves payment providers by name
type ProviderRegistry interface {
	Get(name string) (providers.PaymentProvider, error)
}

// PaymentService handles checkout initiation and reconciliation
type PaymentService struct {
	repo     repositories.AppointmentRepository
	registry ProviderRegistry
	eventBus providers.EventBus
	db       *sqlx.DB
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	repo repositories.AppointmentRepository,
	registry ProviderRegistry,
	eventBus providers.EventBus,
	db *sqlx.DB,
) *PaymentService {
	return &PaymentService{
		repo:     repo,
		registry: registry,
		eventBus: eventBus,
		db:       db,
	}
}

// CheckoutInput carries the checkout initiation payload
type CheckoutInput struct {
	AppointmentID string `json:"appointment_id"`
	SuccessURL    string `json:"success_url"`
	CancelURL     string `json:"cancel_url"`
}

// InitiateCheckout opens a provider checkout session for an unpaid
// appointment and stores the session reference. Re-initiation replaces
// the previous session; only a verified capture ever marks paid.
func (s *PaymentService) InitiateCheckout(ctx context.Context, userID, providerName string, input CheckoutInput) (*providers.PaymentSession, error) {
	appointment, err := s.loadOwned(ctx, userID, input.AppointmentID)
	if err != nil {
		return nil, err
	}

	if appointment.Cancelled {
		return nil, apperrors.NewAlreadyCancelledError("cannot pay for a cancelled appointment")
	}
	if appointment.Paid {
		return nil, apperrors.NewAlreadyPaidError("appointment is already paid")
	}

	provider, err := s.registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	session, err := provider.CreateSession(ctx, providers.CheckoutRequest{
		AppointmentID: appointment.ID,
		Description:   fmt.Sprintf("Appointment with %s on %s at %s", appointment.DoctorName, appointment.SlotDateKey(), appointment.SlotTime),
		Amount:        appointment.Amount,
		Currency:      appointment.Currency,
		SuccessURL:    input.SuccessURL,
		CancelURL:     input.CancelURL,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetPaymentRef(ctx, appointment.ID, provider.Name(), session.Ref); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, "checkout.initiated", appointment.ID, provider.Name(), session.Ref)

	log.Info().Str("appointment_id", appointment.ID).Str("provider", provider.Name()).
		Str("session_ref", session.Ref).Msg("checkout session created")

	return session, nil
}

// Reconcile verifies the capture with the provider and, on the first
// confirmed verification, flips the paid flag and enqueues the voucher.
// Repeated calls after confirmation succeed without side effects.
func (s *PaymentService) Reconcile(ctx context.Context, userID, providerName, appointmentID string) (*entities.Appointment, error) {
	appointment, err := s.loadOwned(ctx, userID, appointmentID)
	if err != nil {
		return nil, err
	}

	if appointment.Cancelled {
		return nil, apperrors.NewAlreadyCancelledError("cannot reconcile a cancelled appointment")
	}
	if appointment.Paid {
		return appointment, nil
	}

	if appointment.PaymentRef == "" {
		return nil, apperrors.NewValidationError("no checkout session to reconcile")
	}
	if appointment.PaymentProvider != providerName {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("appointment checkout was initiated with %s", appointment.PaymentProvider))
	}

	provider, err := s.registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	captured, err := provider.VerifyCapture(ctx, appointment.PaymentRef)
	if err != nil {
		return nil, err
	}
	if !captured {
		return nil, apperrors.NewValidationError("payment has not been completed")
	}

	flipped, err := s.repo.ConfirmPayment(ctx, appointment.ID, appointment.UserEmail)
	if err != nil {
		return nil, err
	}

	if flipped {
		s.recordEvent(ctx, "payment.confirmed", appointment.ID, providerName, appointment.PaymentRef)
		s.publishConfirmed(ctx, appointment.ID, providerName)
		log.Info().Str("appointment_id", appointment.ID).Str("provider", providerName).
			Msg("payment confirmed")
	}

	return s.repo.GetByID(ctx, appointment.ID)
}

func (s *PaymentService) loadOwned(ctx context.Context, userID, appointmentID string) (*entities.Appointment, error) {
	if appointmentID == "" {
		return nil, apperrors.NewValidationError("appointment_id is required")
	}

	appointment, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.UserID != userID {
		return nil, apperrors.NewUnauthorizedError("appointment does not belong to this user")
	}

	return appointment, nil
}

// recordEvent appends to the payment journal. Journal failures are
// logged but never block the payment flow.
func (s *PaymentService) recordEvent(ctx context.Context, eventType, appointmentID, provider, ref string) {
	if s.db == nil {
		return
	}

	query := `
		INSERT INTO payment_events (id, event_type, appointment_id, provider, provider_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := s.db.ExecContext(ctx, query,
		uuid.New().String(), eventType, appointmentID, provider, ref, time.Now()); err != nil {
		log.Warn().Err(err).Str("appointment_id", appointmentID).Str("event_type", eventType).
			Msg("failed to record payment event")
	}
}

func (s *PaymentService) publishConfirmed(ctx context.Context, appointmentID, provider string) {
	if s.eventBus == nil {
		return
	}

	event := &entities.PaymentEvent{
		ID:            uuid.New().String(),
		Type:          entities.PaymentEventConfirmed,
		AppointmentID: appointmentID,
		Provider:      provider,
		Timestamp:     time.Now(),
	}

	if err := s.eventBus.PublishPaymentEvent(ctx, event); err != nil {
		// The notifier's poll loop still picks up the outbox row.
		log.Warn().Err(err).Str("appointment_id", appointmentID).
			Msg("failed to publish payment event")
	}
}
