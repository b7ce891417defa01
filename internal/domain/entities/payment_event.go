package entities

import "time"

// PaymentEventType identifies what happened to a payment
type PaymentEventType string

const (
	PaymentEventConfirmed PaymentEventType = "payment.confirmed"
)

// PaymentEvent is published on the event bus when an appointment's
// payment state changes, so the notifier worker can wake up promptly.
type PaymentEvent struct {
	ID            string           `json:"id"`
	Type          PaymentEventType `json:"type"`
	AppointmentID string           `json:"appointment_id"`
	Provider      string           `json:"provider"`
	Timestamp     time.Time        `json:"timestamp"`
}
