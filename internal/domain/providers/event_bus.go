package providers

import (
	"context"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// payment events. Delivery is best effort; the notification outbox is
// the durable record.
type EventBus interface {
	PublishPaymentEvent(ctx context.Context, event *entities.PaymentEvent) error
	SubscribePaymentEvents(ctx context.Context) (<-chan *entities.PaymentEvent, error)
	Close() error
}
