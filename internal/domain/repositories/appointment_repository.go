package repositories

import (
	"context"
	"time"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
)

// AppointmentFilters narrows appointment listings
type AppointmentFilters struct {
	DoctorID  string
	UserID    string
	Cancelled *bool
	Paid      *bool
}

// AppointmentRepository defines the interface for appointment persistence.
// BookWithSlot and CancelWithSlot pair the appointment write with the
// doctor_slots write in a single transaction.
type AppointmentRepository interface {
	// BookWithSlot inserts the slot claim and the appointment atomically.
	// Returns an unavailable error when the slot is already held.
	BookWithSlot(ctx context.Context, appointment *entities.Appointment) error

	GetByID(ctx context.Context, id string) (*entities.Appointment, error)
	ListByUser(ctx context.Context, userID string) ([]*entities.Appointment, error)
	List(ctx context.Context, filters AppointmentFilters) ([]*entities.Appointment, error)

	// HasActive reports whether the user already holds a non-cancelled,
	// non-completed appointment with the doctor for this exact slot.
	// Bookings for other dates or times with the same doctor are allowed.
	HasActive(ctx context.Context, userID, doctorID string, slotDate time.Time, slotTime string) (bool, error)

	// CancelWithSlot flips the cancelled flag and frees the slot row in
	// one transaction. The slot is freed even if it was already absent.
	CancelWithSlot(ctx context.Context, id string) error

	// SetPaymentRef records the provider and session reference handed
	// back by checkout initiation.
	SetPaymentRef(ctx context.Context, id, provider, ref string) error

	// ConfirmPayment flips paid from false to true and enqueues the
	// voucher notification in the same transaction. Returns true only
	// for the call that performed the flip.
	ConfirmPayment(ctx context.Context, id, recipient string) (bool, error)

	MarkCompleted(ctx context.Context, id string) error
}
