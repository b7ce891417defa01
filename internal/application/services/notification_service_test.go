package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ederjesus1004/Prescito-Doctor/internal/application/services"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/documents"
)

type fakeSender struct {
	fail      bool
	sentTo    []string
	lastName  string
	lastBytes int
}

func (f *fakeSender) SendVoucher(to, subject, body, attachmentName string, attachment []byte) error {
	if f.fail {
		return errors.New("smtp connection refused")
	}
	f.sentTo = append(f.sentTo, to)
	f.lastName = attachmentName
	f.lastBytes = len(attachment)
	return nil
}

func paidAppointment() *entities.Appointment {
	return &entities.Appointment{
		ID:               "appt-1",
		UserID:           "user-1",
		UserName:         "Jane Smith",
		UserEmail:        "jane@example.test",
		DoctorName:       "Dr. Richard James",
		DoctorSpeciality: "General physician",
		DoctorAddress:    "17th Cross, Richmond",
		SlotDate:         time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		SlotTime:         "10:30 AM",
		Amount:           5000,
		Currency:         "USD",
		Paid:             true,
		PaymentProvider:  "stripe",
		PaymentRef:       "cs_123",
	}
}

func pendingNotification() *entities.VoucherNotification {
	return &entities.VoucherNotification{
		ID:            "notif-1",
		AppointmentID: "appt-1",
		Channel:       entities.ChannelEmail,
		Recipient:     "jane@example.test",
		Status:        entities.NotificationStatusPending,
	}
}

func TestNotificationService_Dispatch(t *testing.T) {
	t.Run("sends voucher and marks sent", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		repo := new(MockAppointmentRepository)
		repo.On("GetByID", mock.Anything, "appt-1").Return(paidAppointment(), nil)

		sender := &fakeSender{}
		service := services.NewNotificationService(
			sqlx.NewDb(db, "sqlmock"),
			repo,
			documents.NewVoucherGenerator("Prescripto"),
			sender,
		)

		dbMock.ExpectExec("UPDATE voucher_notifications").
			WithArgs(string(entities.NotificationStatusSent), sqlmock.AnyArg(), "notif-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = service.Dispatch(context.Background(), pendingNotification())

		assert.NoError(t, err)
		assert.Equal(t, []string{"jane@example.test"}, sender.sentTo)
		assert.Equal(t, "voucher-appt-1.pdf", sender.lastName)
		assert.Greater(t, sender.lastBytes, 0, "voucher attachment should not be empty")
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("keeps row pending after a delivery failure", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		repo := new(MockAppointmentRepository)
		repo.On("GetByID", mock.Anything, "appt-1").Return(paidAppointment(), nil)

		sender := &fakeSender{fail: true}
		service := services.NewNotificationService(
			sqlx.NewDb(db, "sqlmock"),
			repo,
			documents.NewVoucherGenerator("Prescripto"),
			sender,
		)

		dbMock.ExpectExec("UPDATE voucher_notifications").
			WithArgs(string(entities.NotificationStatusPending), "smtp connection refused", sqlmock.AnyArg(), "notif-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = service.Dispatch(context.Background(), pendingNotification())

		assert.Error(t, err)
		assert.Empty(t, sender.sentTo)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("marks failed once attempts are exhausted", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		repo := new(MockAppointmentRepository)
		repo.On("GetByID", mock.Anything, "appt-1").Return(paidAppointment(), nil)

		sender := &fakeSender{fail: true}
		service := services.NewNotificationService(
			sqlx.NewDb(db, "sqlmock"),
			repo,
			documents.NewVoucherGenerator("Prescripto"),
			sender,
		)

		notification := pendingNotification()
		notification.Attempts = 4

		dbMock.ExpectExec("UPDATE voucher_notifications").
			WithArgs(string(entities.NotificationStatusFailed), "smtp connection refused", sqlmock.AnyArg(), "notif-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = service.Dispatch(context.Background(), notification)

		assert.Error(t, err)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestNotificationService_FetchPending(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := services.NewNotificationService(sqlx.NewDb(db, "sqlmock"), nil, nil, nil)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "appointment_id", "channel", "recipient", "status", "attempts",
		"last_error", "message_id", "sent_at", "created_at", "updated_at",
	}).AddRow("notif-1", "appt-1", "email", "jane@example.test", "pending", 0,
		nil, nil, nil, now, now)

	dbMock.ExpectQuery("SELECT (.+) FROM voucher_notifications").
		WithArgs(string(entities.NotificationStatusPending), 50).
		WillReturnRows(rows)

	pending, err := service.FetchPending(context.Background(), 50)

	assert.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, "notif-1", pending[0].ID)
	assert.Equal(t, entities.NotificationStatusPending, pending[0].Status)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
