package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/tendant/simple-scene/pkg/simplescene/admin"
	"github.com/tendant/simple-scene/pkg/simplescene/api"
	"github.com/tendant/simple-scene/pkg/simplescene/config"
)

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration from environment
	cfg, err := config.Load(config.WithEnv(""))
	if err != nil {
		slog.Error("Failed to load server configuration", "error", err)
		os.Exit(1)
	}

	// Build repository and service on one store so the admin endpoints
	// see the same data
	repo, err := cfg.BuildRepository()
	if err != nil {
		slog.Error("Failed to build repository", "error", err)
		os.Exit(1)
	}
	svc, err := cfg.BuildServiceWithRepository(repo)
	if err != nil {
		slog.Error("Failed to build service", "error", err)
		os.Exit(1)
	}

	sceneHandler := api.NewSceneHandler(svc)
	nodeHandler := api.NewNodeHandler(svc)

	// Set up router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(api.RequestIDMiddleware)
	r.Use(api.LoggingMiddleware(logger))
	r.Use(api.RecoveryMiddleware)
	r.Use(api.RequestSizeLimitMiddleware(10 << 20))
	r.Use(api.TimeoutMiddleware(60 * time.Second))

	// CORS for development
	if cfg.Environment == "development" {
		r.Use(api.CORSMiddleware(nil, nil, nil))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","environment":%q,"default_archive":%q}`,
			cfg.Environment, cfg.DefaultArchiveStore)
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/scenes", sceneHandler.Routes())
		r.Mount("/nodes", nodeHandler.Routes())
	})

	// Admin endpoints are opt-in and JWT-protected when a secret is set
	if cfg.EnableAdminAPI {
		adminHandler := api.NewAdminHandler(admin.New(repo))
		r.Route("/api/v1/admin", func(r chi.Router) {
			if cfg.JWTSecret != "" {
				r.Use(api.JWTMiddlewares(api.NewTokenAuth(cfg.JWTSecret))...)
			} else {
				slog.Warn("Admin API enabled without JWT_SECRET; endpoints are unauthenticated")
			}
			r.Mount("/", adminHandler.Routes())
		})
	}

	// Create server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Scene server starting",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"database", cfg.DatabaseType,
			"archive_stores", len(cfg.ArchiveStores),
			"admin_api", cfg.EnableAdminAPI,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}
