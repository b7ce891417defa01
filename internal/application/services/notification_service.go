package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/repositories"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/documents"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/notifications"
)

// NotificationService dispatches queued voucher notifications. The
// outbox row is the unit of work: pending rows are picked up, rendered
// and delivered, then marked sent or failed.
type NotificationService struct {
	db          *sqlx.DB
	repo        repositories.AppointmentRepository
	voucher     *documents.VoucherGenerator
	sender      notifications.Sender
	maxAttempts int
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	db *sqlx.DB,
	repo repositories.AppointmentRepository,
	voucher *documents.VoucherGenerator,
	sender notifications.Sender,
) *NotificationService {
	return &NotificationService{
		db:          db,
		repo:        repo,
		voucher:     voucher,
		sender:      sender,
		maxAttempts: 5,
	}
}

// FetchPending returns pending notifications, oldest first
func (n *NotificationService) FetchPending(ctx context.Context, limit int) ([]*entities.VoucherNotification, error) {
	query := `
		SELECT id, appointment_id, channel, recipient, status, attempts,
		       last_error, message_id, sent_at, created_at, updated_at
		FROM voucher_notifications
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2`

	var pending []*entities.VoucherNotification
	if err := n.db.SelectContext(ctx, &pending, query, entities.NotificationStatusPending, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch pending notifications: %w", err)
	}

	return pending, nil
}

// DispatchPending delivers all currently pending notifications and
// returns how many were sent.
func (n *NotificationService) DispatchPending(ctx context.Context) (int, error) {
	pending, err := n.FetchPending(ctx, 50)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, notification := range pending {
		if err := n.Dispatch(ctx, notification); err != nil {
			log.Warn().Err(err).Str("notification_id", notification.ID).
				Str("appointment_id", notification.AppointmentID).
				Msg("failed to dispatch voucher notification")
			continue
		}
		sent++
	}

	return sent, nil
}

// Dispatch renders and delivers one voucher notification
func (n *NotificationService) Dispatch(ctx context.Context, notification *entities.VoucherNotification) error {
	appointment, err := n.repo.GetByID(ctx, notification.AppointmentID)
	if err != nil {
		n.markFailed(ctx, notification, err)
		return err
	}

	pdf, err := n.voucher.Render(appointment)
	if err != nil {
		n.markFailed(ctx, notification, err)
		return err
	}

	subject := "Your appointment payment voucher"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour payment for the appointment with %s on %s at %s has been confirmed.\nYour voucher is attached.\n",
		appointment.UserName, appointment.DoctorName, appointment.SlotDateKey(), appointment.SlotTime)
	attachmentName := fmt.Sprintf("voucher-%s.pdf", appointment.ID)

	if err := n.sender.SendVoucher(notification.Recipient, subject, body, attachmentName, pdf); err != nil {
		n.markFailed(ctx, notification, err)
		return err
	}

	return n.markSent(ctx, notification)
}

func (n *NotificationService) markSent(ctx context.Context, notification *entities.VoucherNotification) error {
	query := `
		UPDATE voucher_notifications
		SET status = $1, attempts = attempts + 1, sent_at = $2, updated_at = $2, last_error = NULL
		WHERE id = $3`

	if _, err := n.db.ExecContext(ctx, query,
		entities.NotificationStatusSent, time.Now(), notification.ID); err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}

	log.Info().Str("notification_id", notification.ID).
		Str("appointment_id", notification.AppointmentID).
		Str("recipient", notification.Recipient).
		Msg("voucher notification sent")

	return nil
}

// markFailed increments attempts and keeps the row pending until the
// retry limit is reached.
func (n *NotificationService) markFailed(ctx context.Context, notification *entities.VoucherNotification, cause error) {
	status := entities.NotificationStatusPending
	if notification.Attempts+1 >= n.maxAttempts {
		status = entities.NotificationStatusFailed
	}

	query := `
		UPDATE voucher_notifications
		SET status = $1, attempts = attempts + 1, last_error = $2, updated_at = $3
		WHERE id = $4`

	if _, err := n.db.ExecContext(ctx, query,
		status, cause.Error(), time.Now(), notification.ID); err != nil {
		log.Error().Err(err).Str("notification_id", notification.ID).
			Msg("failed to update notification state")
	}
}
