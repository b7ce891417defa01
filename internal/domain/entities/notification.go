package entities

import "time"

// NotificationChannel represents the delivery channel
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
)

// NotificationStatus represents the delivery status
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// VoucherNotification is an outbox record for a payment-confirmation
// voucher. At most one exists per (appointment, channel), which is what
// makes the post-payment side effect exactly-once.
type VoucherNotification struct {
	ID            string              `json:"id" db:"id"`
	AppointmentID string              `json:"appointment_id" db:"appointment_id"`
	Channel       NotificationChannel `json:"channel" db:"channel"`
	Recipient     string              `json:"recipient" db:"recipient"`
	Status        NotificationStatus  `json:"status" db:"status"`
	Attempts      int                 `json:"attempts" db:"attempts"`
	LastError     *string             `json:"last_error,omitempty" db:"last_error"`
	MessageID     *string             `json:"message_id,omitempty" db:"message_id"`
	SentAt        *time.Time          `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}
