package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/entities"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/providers"
	redisclient "github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/clients/redis"
)

const paymentEventsChannel = "payments.events"

// RedisEventBus implements the EventBus interface using Redis Pub/Sub
type RedisEventBus struct {
	client      *redisclient.Client
	pubsub      *redis.PubSub
	subscribers map[chan *entities.PaymentEvent]struct{}
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:      client,
		subscribers: make(map[chan *entities.PaymentEvent]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// PublishPaymentEvent publishes a payment event to all subscribers
func (b *RedisEventBus) PublishPaymentEvent(ctx context.Context, event *entities.PaymentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, paymentEventsChannel, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("event_id", event.ID).Str("appointment_id", event.AppointmentID).
		Msg("published payment event")
	return nil
}

// SubscribePaymentEvents subscribes to payment events
func (b *RedisEventBus) SubscribePaymentEvents(ctx context.Context) (<-chan *entities.PaymentEvent, error) {
	b.mu.Lock()

	if b.pubsub == nil {
		b.pubsub = b.client.Subscribe(b.ctx, paymentEventsChannel)
		go b.receiveMessages(b.pubsub)
	}

	eventChan := make(chan *entities.PaymentEvent, 100)
	b.subscribers[eventChan] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.removeSubscriber(eventChan)
	}()

	return eventChan, nil
}

func (b *RedisEventBus) receiveMessages(pubsub *redis.PubSub) {
	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event entities.PaymentEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Msg("failed to unmarshal payment event")
				continue
			}

			b.mu.RLock()
			for subscriber := range b.subscribers {
				select {
				case subscriber <- &event:
				default:
					// Subscriber channel full, skip event
					log.Warn().Str("event_id", event.ID).Msg("subscriber channel full, skipping event")
				}
			}
			b.mu.RUnlock()
		}
	}
}

func (b *RedisEventBus) removeSubscriber(eventChan chan *entities.PaymentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[eventChan]; !ok {
		return
	}

	delete(b.subscribers, eventChan)
	close(eventChan)
}

// Close shuts down the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	for subscriber := range b.subscribers {
		close(subscriber)
	}
	b.subscribers = make(map[chan *entities.PaymentEvent]struct{})

	if b.pubsub != nil {
		return b.pubsub.Close()
	}
	return nil
}
