package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ederjesus1004/Prescito-Doctor/internal/adapters/database"
	"github.com/ederjesus1004/Prescito-Doctor/internal/adapters/events"
	"github.com/ederjesus1004/Prescito-Doctor/internal/application/services"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/clients/postgres"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/clients/redis"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/documents"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/notifications"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/observability"
	"github.com/ederjesus1004/Prescito-Doctor/pkg/config"
)

const pollInterval = 30 * time.Second

// The notifier drains the voucher outbox: a steady poll loop catches
// everything, and payment events over Redis wake it up early.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	observability.InitLogger("prescripto-notifier", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	appointmentAdapter := database.NewAppointmentAdapter(pgClient)
	voucherGenerator := documents.NewVoucherGenerator("Prescripto")
	emailSender := notifications.NewEmailSender(&cfg.SMTP)

	notificationService := services.NewNotificationService(
		pgClient.DBX(),
		appointmentAdapter,
		voucherGenerator,
		emailSender,
	)

	wake := make(chan struct{}, 1)

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, relying on polling only")
	} else {
		defer redisClient.Close()
		eventBus := events.NewRedisEventBus(redisClient)
		defer eventBus.Close()

		eventChan, err := eventBus.SubscribePaymentEvents(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to subscribe to payment events")
		} else {
			go func() {
				for event := range eventChan {
					log.Debug().Str("appointment_id", event.AppointmentID).
						Msg("payment event received")
					select {
					case wake <- struct{}{}:
					default:
					}
				}
			}()
		}
	}

	log.Info().Dur("poll_interval", pollInterval).Msg("notifier started")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		dispatch(ctx, notificationService)

		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		case <-ticker.C:
		case <-wake:
		}
	}
}

// dispatch drains pending notifications, retrying transient fetch
// failures with exponential backoff.
func dispatch(ctx context.Context, svc *services.NotificationService) {
	operation := func() error {
		sent, err := svc.DispatchPending(ctx)
		if err != nil {
			return err
		}
		if sent > 0 {
			log.Info().Int("sent", sent).Msg("dispatched voucher notifications")
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		log.Error().Err(err).Msg("failed to dispatch notifications")
	}
}
