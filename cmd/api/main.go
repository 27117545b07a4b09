package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/tofunmi-festus/intelliflow-backend/internal/api/handlers"
	"github.com/tofunmi-festus/intelliflow-backend/internal/api/middleware"
	"github.com/tofunmi-festus/intelliflow-backend/internal/config"
	"github.com/tofunmi-festus/intelliflow-backend/internal/logger"
	"github.com/tofunmi-festus/intelliflow-backend/internal/workers"
)

func main() {
	// Load .env if present; deployed environments set variables directly
	_ = godotenv.Load()

	cfg := config.Load()

	// Initialize logger
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The pool runs on a background context: a shutdown signal must not
	// cancel fits that in-flight requests are still waiting on. The pool
	// is drained explicitly after the server stops accepting requests.
	pool := workers.NewPool(cfg.FitWorkers, cfg.FitQueueSize)
	if err := pool.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start fit pool")
	}

	// Initialize handlers
	forecastHandler := handlers.NewForecastHandler(pool, cfg.FitTimeout, cfg.MaxBodyBytes, log)

	// Create router
	router := mux.NewRouter()

	router.HandleFunc("/forecast", forecastHandler.Forecast).Methods(http.MethodPost)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	router.NotFoundHandler = middleware.NotFound()
	router.MethodNotAllowedHandler = middleware.MethodNotAllowed()

	// Apply middleware. RequestID runs before Logger so the request
	// logger carries the ID.
	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(router),
			),
		),
	)

	// Create HTTP server. The write timeout must outlive the fit
	// deadline or slow fits would have their responses cut off.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.FitTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("port", cfg.Port).
			Int("fit_workers", cfg.FitWorkers).
			Dur("fit_timeout", cfg.FitTimeout).
			Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		// Wait for interrupt signal or server failure
		<-gctx.Done()

		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Stop accepting requests and let in-flight handlers finish,
		// then drain the pool they were using.
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}

		if err := pool.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error stopping fit pool")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}

	log.Info().Msg("Server exited")
}
