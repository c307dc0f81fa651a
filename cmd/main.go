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

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kkkkikiki/dealswipe/internal/config"
	"github.com/kkkkikiki/dealswipe/internal/database"
	"github.com/kkkkikiki/dealswipe/internal/geo"
	"github.com/kkkkikiki/dealswipe/internal/normalize"
	"github.com/kkkkikiki/dealswipe/internal/repository"
	"github.com/kkkkikiki/dealswipe/internal/service"
	"github.com/kkkkikiki/dealswipe/internal/telemetry"
)

func main() {
	ctx := context.Background()

	// Load configuration from environment variables
	cfg, err := config.Load(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.App.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Info("starting dealswipe service", "environment", cfg.App.Environment)

	// Initialize database connections
	db, err := database.NewDB(ctx, cfg)
	if err != nil {
		if !cfg.Feed.SampleFallback {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		logger.Warn("database unreachable, starting in fallback mode", "error", err)
		db, err = database.OpenLazy(cfg)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database connections", "error", err)
		}
	}()

	normalizer := normalize.New(cfg.Feed.DefaultValidity)
	dealStore := repository.NewDealStore(db.Postgres, normalizer, logger)

	diagnostics := telemetry.NewDiagnostics(logger)
	resolver := geo.NewResolver(cfg.Geo.GeoEndpoint(), geo.WithTimeout(cfg.Geo.Timeout), geo.RequireClientIP())
	trackerOpts := []telemetry.Option{
		telemetry.WithLogger(logger),
		telemetry.WithDiagnostics(diagnostics),
		telemetry.WithSessionTTL(cfg.Telemetry.SessionTTL),
	}
	if !cfg.Telemetry.Enabled {
		trackerOpts = append(trackerOpts, telemetry.Disabled())
	}
	tracker := telemetry.NewTracker(repository.NewTelemetryRepository(db.Postgres), resolver, trackerOpts...)
	analytics := telemetry.NewAnalytics(repository.NewAnalyticsRepository(db.Postgres), diagnostics)

	feeds := service.NewFeedServer(dealStore, normalizer, tracker,
		service.WithSampleFallback(cfg.Feed.SampleFallback),
		service.WithFeedLogger(logger),
		service.WithIdleTTL(cfg.Feed.IdleTTL),
	)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go service.RunSweeper(sweepCtx, cfg.Feed.SweepInterval, logger, feeds, tracker)

	// Create HTTP mux
	mux := http.NewServeMux()
	service.Register(mux, service.Servers{
		Deals:     service.NewDealServer(dealStore, normalizer, logger),
		Feeds:     feeds,
		Telemetry: service.NewTelemetryServer(tracker, service.WithFeeds(feeds)),
		Analytics: service.NewAnalyticsServer(analytics),
	})

	// Add health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		hostname, _ := os.Hostname()
		w.WriteHeader(http.StatusOK)
		response := fmt.Sprintf(`{"status":"ok","service":"dealswipe","hostname":"%s"}`, hostname)
		w.Write([]byte(response))
	})

	// Add database health check endpoint
	mux.HandleFunc("/health/db", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"error","message":"postgres unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","postgres":"connected"}`))
	})

	// Add Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:           cfg.Server.GetServerAddr(),
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
		// Use h2c so we can serve HTTP/2 without TLS
		Handler: h2c.NewHandler(mux, &http2.Server{
			MaxConcurrentStreams: 1000,
		}),
	}

	// Start server in goroutine
	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	stopSweeper()
	// Drain background saved-deal and telemetry writes
	feeds.Wait()
	logger.Info("server exited gracefully")
}
