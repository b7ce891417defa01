package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ederjesus1004/Prescito-Doctor/internal/adapters/cache"
	"github.com/ederjesus1004/Prescito-Doctor/internal/adapters/database"
	"github.com/ederjesus1004/Prescito-Doctor/internal/adapters/events"
	"github.com/ederjesus1004/Prescito-Doctor/internal/adapters/payments"
	"github.com/ederjesus1004/Prescito-Doctor/internal/api/handlers"
	"github.com/ederjesus1004/Prescito-Doctor/internal/api/middleware"
	"github.com/ederjesus1004/Prescito-Doctor/internal/api/routes"
	"github.com/ederjesus1004/Prescito-Doctor/internal/application/services"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/providers"
	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/repositories"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/auth"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/clients/postgres"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/clients/redis"
	"github.com/ederjesus1004/Prescito-Doctor/internal/infrastructure/observability"
	"github.com/ederjesus1004/Prescito-Doctor/pkg/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	observability.InitLogger("prescripto-api", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Initialize Redis client; the application degrades gracefully
	// without caching and event publishing.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient, "prescripto")
		eventBus = events.NewRedisEventBus(redisClient)
		defer eventBus.Close()
	}

	// Initialize adapters
	userAdapter := database.NewUserAdapter(pgClient)
	appointmentAdapter := database.NewAppointmentAdapter(pgClient)
	contactAdapter := database.NewContactAdapter(pgClient)

	baseDoctorAdapter := database.NewDoctorAdapter(pgClient)
	var doctorAdapter repositories.DoctorRepository
	if cacheProvider != nil {
		doctorAdapter = database.NewCachedDoctorAdapter(baseDoctorAdapter, cacheProvider)
	} else {
		doctorAdapter = baseDoctorAdapter
	}

	paymentRegistry := payments.NewRegistry(&cfg.Payments)

	// Initialize services
	tokens := auth.NewTokenManager(&cfg.Auth)
	userService := services.NewUserService(userAdapter, tokens, &cfg.Auth)
	doctorService := services.NewDoctorService(doctorAdapter)
	bookingService := services.NewBookingService(appointmentAdapter, doctorAdapter, userAdapter, cfg.Payments.Currency)
	paymentService := services.NewPaymentService(appointmentAdapter, paymentRegistry, eventBus, pgClient.DBX())
	contactService := services.NewContactService(contactAdapter)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	doctorHandler := handlers.NewDoctorHandler(doctorService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	contactHandler := handlers.NewContactHandler(contactService)

	authMiddleware := middleware.NewAuthMiddleware(tokens)

	router := routes.NewRouter(
		userHandler,
		doctorHandler,
		bookingHandler,
		paymentHandler,
		contactHandler,
		authMiddleware,
		cfg.Server.AllowedOrigins,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
