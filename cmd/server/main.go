// Harm reduction SMS chatbot server for Massachusetts.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/masshrc/chatbot/internal/alerts"
	"github.com/masshrc/chatbot/internal/api"
	"github.com/masshrc/chatbot/internal/config"
	"github.com/masshrc/chatbot/internal/dialogue"
	"github.com/masshrc/chatbot/internal/geo"
	"github.com/masshrc/chatbot/internal/middleware"
	"github.com/masshrc/chatbot/internal/sms"
	"github.com/masshrc/chatbot/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "session_ttl", cfg.SessionTTL)

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	geoData, err := geo.Load(cfg.ResourceDataPath, cfg.ZipBoundaryPath)
	if err != nil {
		slog.Error("Failed to load resource data", "error", err)
		os.Exit(1)
	}
	slog.Info("Resource data loaded", "resources", len(geoData.Resources()))

	var transport sms.Transport = sms.LogTransport{}
	if cfg.TwilioEnabled() {
		transport = sms.NewTwilioTransport(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From)
		slog.Info("Twilio transport enabled", "from", cfg.Twilio.From)
	} else {
		slog.Info("Twilio credentials not set, outbound alerts are logged only")
	}

	// Initialize services.
	engine := dialogue.NewEngine(repo, geoData, cfg.PhoneHashSalt, cfg.SessionTTL, cfg.GreetingMediaURL)
	broadcaster := alerts.NewBroadcaster(repo, transport)

	// Initialize handlers.
	handler := api.NewHandler(engine, broadcaster, repo)

	var adminAuth func(http.Handler) http.Handler
	if cfg.AdminEnabled() {
		adminAuth = middleware.BasicAuth(cfg.Admin.Username, cfg.Admin.Password)
	} else {
		slog.Info("Admin credentials not set, broadcast endpoint disabled")
	}

	// Setup router.
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	handler.RegisterRoutes(r, adminAuth)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server stopped")
}
