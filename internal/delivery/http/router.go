package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "eventrsvp/docs"
	"eventrsvp/internal/delivery/http/controllers"
	"eventrsvp/internal/delivery/http/middleware"
	"eventrsvp/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// RSVP routes require a bearer token accepted by verifier.
func NewRouter(
	rsvpController *controllers.RSVPController,
	healthController *controllers.HealthController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
	metricsHandler http.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier, logger)

	// RSVP admin
	mux.HandleFunc("GET /events/{eventID}/rsvps", requireAuth(rsvpController.ListRSVPs))
	mux.HandleFunc("PUT /events/{eventID}/rsvps/{memberID}", requireAuth(rsvpController.SetRSVP))
	mux.HandleFunc("DELETE /events/{eventID}/rsvps/{memberID}", requireAuth(rsvpController.RemoveRSVP))

	// Operations
	mux.HandleFunc("GET /healthz", healthController.Health)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
