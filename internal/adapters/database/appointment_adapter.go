package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/repositories"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/clients/postgres"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var appointmentColumns = []interface{}{
	"id", "user_id", "doctor_id",
	"user_name", "user_email", "doctor_name", "doctor_speciality", "doctor_address",
	"slot_date", "slot_time", "amount", "currency",
	"cancelled", "paid", "completed",
	"payment_provider", "payment_ref",
	"created_at", "updated_at",
}

// BookWithSlot claims the slot and inserts the appointment in one
// transaction. The unique index on doctor_slots decides slot races:
// the loser's insert fails and the whole booking rolls back.
func (a *AppointmentAdapter) BookWithSlot(ctx context.Context, appointment *entities.Appointment) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	apptQuery, apptArgs, err := a.db.Insert("appointments").Rows(goqu.Record{
		"id":                appointment.ID,
		"user_id":           appointment.UserID,
		"doctor_id":         appointment.DocID,
		"user_name":         appointment.UserName,
		"user_email":        appointment.UserEmail,
		"doctor_name":       appointment.DoctorName,
		"doctor_speciality": appointment.DoctorSpeciality,
		"doctor_address":    appointment.DoctorAddress,
		"slot_date":         appointment.SlotDate,
		"slot_time":         appointment.SlotTime,
		"amount":            appointment.Amount,
		"currency":          appointment.Currency,
		"cancelled":         appointment.Cancelled,
		"paid":              appointment.Paid,
		"completed":         appointment.Completed,
		"created_at":        appointment.CreatedAt,
		"updated_at":        appointment.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build appointment insert", err)
	}

	if _, err := tx.ExecContext(ctx, apptQuery, apptArgs...); err != nil {
		return apperrors.NewInternalError("failed to create appointment", err)
	}

	// The slot row references the appointment, so it is claimed second;
	// a unique violation rolls the appointment back with it.
	slotQuery, slotArgs, err := a.db.Insert("doctor_slots").Rows(goqu.Record{
		"id":             uuid.New().String(),
		"doctor_id":      appointment.DocID,
		"slot_date":      appointment.SlotDate,
		"slot_time":      appointment.SlotTime,
		"appointment_id": appointment.ID,
		"created_at":     appointment.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build slot insert", err)
	}

	if _, err := tx.ExecContext(ctx, slotQuery, slotArgs...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewUnavailableError("slot not available")
		}
		return apperrors.NewInternalError("failed to claim slot", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit booking", err)
	}

	return nil
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	appointment, err := scanAppointment(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get appointment", err)
	}

	return appointment, nil
}

// ListByUser retrieves a user's appointments, newest first
func (a *AppointmentAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.Appointment, error) {
	return a.list(ctx, repositories.AppointmentFilters{UserID: userID})
}

// List retrieves appointments matching the filters
func (a *AppointmentAdapter) List(ctx context.Context, filters repositories.AppointmentFilters) ([]*entities.Appointment, error) {
	return a.list(ctx, filters)
}

func (a *AppointmentAdapter) list(ctx context.Context, filters repositories.AppointmentFilters) ([]*entities.Appointment, error) {
	ds := a.db.Select(appointmentColumns...).From("appointments")

	if filters.UserID != "" {
		ds = ds.Where(goqu.Ex{"user_id": filters.UserID})
	}
	if filters.DoctorID != "" {
		ds = ds.Where(goqu.Ex{"doctor_id": filters.DoctorID})
	}
	if filters.Cancelled != nil {
		ds = ds.Where(goqu.Ex{"cancelled": *filters.Cancelled})
	}
	if filters.Paid != nil {
		ds = ds.Where(goqu.Ex{"paid": *filters.Paid})
	}

	ds = ds.Order(goqu.I("created_at").Desc())

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	defer rows.Close()

	var appointments []*entities.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment", err)
		}
		appointments = append(appointments, appointment)
	}

	return appointments, nil
}

// HasActive reports whether the user holds a live appointment for this
// exact doctor slot
func (a *AppointmentAdapter) HasActive(ctx context.Context, userID, doctorID string, slotDate time.Time, slotTime string) (bool, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From("appointments").
		Where(goqu.Ex{
			"user_id":   userID,
			"doctor_id": doctorID,
			"slot_date": slotDate,
			"slot_time": slotTime,
			"cancelled": false,
			"completed": false,
		}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to count appointments", err)
	}

	return count > 0, nil
}

// CancelWithSlot flips the cancelled flag and frees the slot atomically
func (a *AppointmentAdapter) CancelWithSlot(ctx context.Context, id string) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	cancelQuery, cancelArgs, err := a.db.Update("appointments").
		Set(goqu.Record{
			"cancelled":  true,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id, "cancelled": false}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build cancel query", err)
	}

	result, err := tx.ExecContext(ctx, cancelQuery, cancelArgs...)
	if err != nil {
		return apperrors.NewInternalError("failed to cancel appointment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewAlreadyCancelledError(fmt.Sprintf("appointment %s is already cancelled or does not exist", id))
	}

	slotQuery, slotArgs, err := a.db.Delete("doctor_slots").
		Where(goqu.Ex{"appointment_id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build slot delete", err)
	}

	// Freeing an absent slot row is fine; the flag flip above is the guard.
	if _, err := tx.ExecContext(ctx, slotQuery, slotArgs...); err != nil {
		return apperrors.NewInternalError("failed to free slot", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit cancellation", err)
	}

	return nil
}

// SetPaymentRef records the provider session reference from checkout initiation
func (a *AppointmentAdapter) SetPaymentRef(ctx context.Context, id, provider, ref string) error {
	query, args, err := a.db.Update("appointments").
		Set(goqu.Record{
			"payment_provider": provider,
			"payment_ref":      ref,
			"updated_at":       time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to set payment reference", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}

	return nil
}

// ConfirmPayment flips paid false->true and enqueues the voucher
// notification in the same transaction. The conditional update makes
// the flip idempotent: only one caller ever sees rowsAffected == 1.
func (a *AppointmentAdapter) ConfirmPayment(ctx context.Context, id, recipient string) (bool, error) {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return false, apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	now := time.Now()

	paidQuery, paidArgs, err := a.db.Update("appointments").
		Set(goqu.Record{
			"paid":       true,
			"updated_at": now,
		}).
		Where(goqu.Ex{"id": id, "paid": false, "cancelled": false}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build paid update", err)
	}

	result, err := tx.ExecContext(ctx, paidQuery, paidArgs...)
	if err != nil {
		return false, apperrors.NewInternalError("failed to mark appointment paid", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	outboxQuery, outboxArgs, err := a.db.Insert("voucher_notifications").Rows(goqu.Record{
		"id":             uuid.New().String(),
		"appointment_id": id,
		"channel":        entities.ChannelEmail,
		"recipient":      recipient,
		"status":         entities.NotificationStatusPending,
		"attempts":       0,
		"created_at":     now,
		"updated_at":     now,
	}).ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build outbox insert", err)
	}

	// Only the flip winner reaches this insert; the unique key on
	// (appointment_id, channel) is the backstop.
	if _, err := tx.ExecContext(ctx, outboxQuery, outboxArgs...); err != nil {
		return false, apperrors.NewInternalError("failed to enqueue voucher notification", err)
	}

	if err := tx.Commit(); err != nil {
		return false, apperrors.NewInternalError("failed to commit payment confirmation", err)
	}

	return true, nil
}

// MarkCompleted flips the completed flag
func (a *AppointmentAdapter) MarkCompleted(ctx context.Context, id string) error {
	query, args, err := a.db.Update("appointments").
		Set(goqu.Record{
			"completed":  true,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to mark appointment completed", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}

	return nil
}

func scanAppointment(row rowScanner) (*entities.Appointment, error) {
	appointment := &entities.Appointment{}
	var provider, ref sql.NullString

	err := row.Scan(
		&appointment.ID,
		&appointment.UserID,
		&appointment.DocID,
		&appointment.UserName,
		&appointment.UserEmail,
		&appointment.DoctorName,
		&appointment.DoctorSpeciality,
		&appointment.DoctorAddress,
		&appointment.SlotDate,
		&appointment.SlotTime,
		&appointment.Amount,
		&appointment.Currency,
		&appointment.Cancelled,
		&appointment.Paid,
		&appointment.Completed,
		&provider,
		&ref,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	appointment.PaymentProvider = provider.String
	appointment.PaymentRef = ref.String

	return appointment, nil
}
