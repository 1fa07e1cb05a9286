package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"eventrsvp/config"
	"eventrsvp/internal/adapters/auth"
	"eventrsvp/internal/adapters/discord"
	"eventrsvp/internal/adapters/metrics"
	httpdelivery "eventrsvp/internal/delivery/http"
	"eventrsvp/internal/delivery/http/controllers"
	"eventrsvp/internal/delivery/http/middleware"
	"eventrsvp/internal/domain"
	"eventrsvp/internal/repository/postgres"
	"eventrsvp/internal/services"
)

const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Migrate bool
	HTTP    bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Discord bot and the RSVP admin API",
		Long: `Connect to the Discord gateway and reconcile reactions until interrupted.

The HTTP listener on PORT serves the RSVP admin API, /healthz, /metrics and
/swagger/. Pass --http=false to run the bot alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := rootOpts.load(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, logger, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "apply the schema before starting")
	cmd.Flags().BoolVar(&opts.HTTP, "http", true, "serve the admin API and metrics")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts *ServeOptions) error {
	if err := cfg.RequireDiscord(); err != nil {
		return WrapExitError(ExitCommandError, "cannot start bot", err)
	}
	if opts.HTTP {
		if err := cfg.RequireJWT(); err != nil {
			return WrapExitError(ExitCommandError, "cannot start admin API", err)
		}
	}

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to connect to database", err)
	}
	defer db.Close()

	if opts.Migrate {
		applied, err := postgres.Migrate(ctx, db)
		if err != nil {
			return WrapExitError(ExitFailure, "migration failed", err)
		}
		logger.Info("schema up to date", "files", len(applied))
	}

	rsvpRepo := postgres.NewRSVPRepository(db)
	reconciler := services.NewReconciler(logger, postgres.NewMemberRepository(db), rsvpRepo)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewReconcileMetrics(reg)

	handler := discord.NewHandler(logger, reconciler, recorder, cfg.ReconcileTimeout, cfg.CommandPrefix)
	gateway, err := discord.NewGateway(cfg.DiscordToken, handler, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create discord session", err)
	}
	if err := gateway.Open(); err != nil {
		return WrapExitError(ExitCommandError, "failed to connect to discord", err)
	}
	defer func() {
		if err := gateway.Close(); err != nil {
			logger.Warn("discord close failed", "err", err)
		}
	}()
	logger.Info("bot started", "prefix", cfg.CommandPrefix, "reconcile_timeout", cfg.ReconcileTimeout)

	if !opts.HTTP {
		<-ctx.Done()
		logger.Info("shutting down")
		return nil
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newAPIHandler(cfg, logger, db, postgres.NewEventRepository(db), rsvpRepo, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "http server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "err", err)
	}
	return nil
}

// newAPIHandler wires the admin API, health and metrics routes behind the
// CORS and request logging middleware.
func newAPIHandler(cfg *config.Config, logger *slog.Logger, db controllers.Pinger, eventRepo domain.EventRepository, rsvpRepo domain.RSVPRepository, reg *prometheus.Registry) http.Handler {
	router := httpdelivery.NewRouter(
		controllers.NewRSVPController(logger, services.NewRSVPService(eventRepo, rsvpRepo, cfg.ReconcileTimeout)),
		controllers.NewHealthController(logger, db),
		auth.NewJWTVerifier(cfg.JWTSecret),
		logger,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	)
	return middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, router))
}
