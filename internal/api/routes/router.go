package routes

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ederjesus1004/Prescito-Doctor/internal/api/handlers"
	"github.com/ederjesus1004/Prescito-Doctor/internal/api/middleware"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	userHandler    *handlers.UserHandler
	doctorHandler  *handlers.DoctorHandler
	bookingHandler *handlers.BookingHandler
	paymentHandler *handlers.PaymentHandler
	contactHandler *handlers.ContactHandler

	authMiddleware *middleware.AuthMiddleware
	allowedOrigins []string
}

// NewRouter creates a new router
func NewRouter(
	userHandler *handlers.UserHandler,
	doctorHandler *handlers.DoctorHandler,
	bookingHandler *handlers.BookingHandler,
	paymentHandler *handlers.PaymentHandler,
	contactHandler *handlers.ContactHandler,
	authMiddleware *middleware.AuthMiddleware,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		userHandler:    userHandler,
		doctorHandler:  doctorHandler,
		bookingHandler: bookingHandler,
		paymentHandler: paymentHandler,
		contactHandler: contactHandler,
		authMiddleware: authMiddleware,
		allowedOrigins: allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	auth := r.authMiddleware

	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Warn().Err(err).Msg("failed to write health response")
		}
	})

	// User endpoints
	r.mux.HandleFunc("POST /api/users/register", r.userHandler.Register)
	r.mux.HandleFunc("POST /api/users/login", r.userHandler.Login)
	r.mux.HandleFunc("GET /api/users/me", auth.RequireAuth(r.userHandler.GetProfile))
	r.mux.HandleFunc("PUT /api/users/me", auth.RequireAuth(r.userHandler.UpdateProfile))

	// Doctor endpoints
	r.mux.HandleFunc("GET /api/doctors", r.doctorHandler.ListDoctors)
	r.mux.HandleFunc("GET /api/doctors/{id}", r.doctorHandler.GetDoctor)

	// Appointment endpoints
	r.mux.HandleFunc("POST /api/appointments", auth.RequireAuth(r.bookingHandler.Book))
	r.mux.HandleFunc("GET /api/appointments", auth.RequireAuth(r.bookingHandler.ListMine))
	r.mux.HandleFunc("GET /api/appointments/{id}", auth.RequireAuth(r.bookingHandler.Get))
	r.mux.HandleFunc("POST /api/appointments/{id}/cancel", auth.RequireAuth(r.bookingHandler.Cancel))

	// Payment endpoints
	r.mux.HandleFunc("POST /api/payments/{provider}/initiate", auth.RequireAuth(r.paymentHandler.Initiate))
	r.mux.HandleFunc("POST /api/payments/{provider}/reconcile", auth.RequireAuth(r.paymentHandler.Reconcile))

	// Contact endpoints
	r.mux.HandleFunc("POST /api/contact", r.contactHandler.Submit)

	// Admin endpoints
	r.mux.HandleFunc("POST /api/admin/login", r.userHandler.AdminLogin)
	r.mux.HandleFunc("POST /api/admin/doctors", auth.RequireAdmin(r.doctorHandler.AddDoctor))
	r.mux.HandleFunc("PATCH /api/admin/doctors/{id}/availability", auth.RequireAdmin(r.doctorHandler.SetAvailability))
	r.mux.HandleFunc("GET /api/admin/appointments", auth.RequireAdmin(r.bookingHandler.AdminList))
	r.mux.HandleFunc("POST /api/admin/appointments/{id}/cancel", auth.RequireAdmin(r.bookingHandler.AdminCancel))
	r.mux.HandleFunc("POST /api/admin/appointments/{id}/complete", auth.RequireAdmin(r.bookingHandler.AdminComplete))
	r.mux.HandleFunc("GET /api/admin/contact-messages", auth.RequireAdmin(r.contactHandler.AdminList))
	r.mux.HandleFunc("PATCH /api/admin/contact-messages/{id}", auth.RequireAdmin(r.contactHandler.AdminUpdateStatus))

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
