package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	appLogger "github.com/FACorreiaa/go-travel-planner/app/logger"
	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/app/tracer"
	"github.com/FACorreiaa/go-travel-planner/config"
	_ "github.com/FACorreiaa/go-travel-planner/docs"
	"github.com/FACorreiaa/go-travel-planner/internal/api/auth"
	"github.com/FACorreiaa/go-travel-planner/internal/container"
	"github.com/FACorreiaa/go-travel-planner/internal/router"
)

// @title                       Travel Planner API
// @version                     1.0
// @description                 Trip plans, checklists and AI recommendations for travel in Korea.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// Use standard log until slog is configured, in case godotenv fails
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := appLogger.New(cfg.Mode)
	slog.SetDefault(logger)

	if err = run(&cfg, logger); err != nil {
		logger.Error("Application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

// run starts the server and blocks until a shutdown signal. Every resource
// it opened is released before it returns.
func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	// --- Observability ---
	shutdownTelemetry, err := tracer.InitTracingAndMetrics("travel-planner", cfg.Handlers.Prometheus.Port, logger)
	if err != nil {
		return fmt.Errorf("initialize tracing and metrics: %w", err)
	}
	defer func() {
		telemetryCtx, telemetryCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer telemetryCancel()
		if err := shutdownTelemetry(telemetryCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.Any("error", err))
		}
	}()
	metrics.InitAppMetrics()

	// --- Database Setup ---
	tunnel, err := database.OpenTunnel(cfg.Repositories.SSHTunnel, logger)
	if err != nil {
		return fmt.Errorf("open ssh tunnel: %w", err)
	}
	defer tunnel.Close()

	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		return err
	}
	pool, err := database.Init(ctx, dbConfig.ConnectionURL, cfg.Repositories.Postgres.MAXCONNS, tunnel, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		return errors.New("database not ready after waiting")
	}
	if err = database.RunMigrations(pool, logger); err != nil {
		return err
	}

	// --- Dependency Injection ---
	c, err := container.NewContainer(ctx, cfg, pool, logger)
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}

	mainRouter := router.SetupRouter(&router.Config{
		AuthHandler:            c.AuthHandler,
		MemberHandler:          c.MemberHandler,
		PlanHandler:            c.PlanHandler,
		SpotHandler:            c.SpotHandler,
		ChecklistHandler:       c.ChecklistHandler,
		RegionHandler:          c.RegionHandler,
		RecommendHandler:       c.RecommendHandler,
		AuthenticateMiddleware: auth.Authenticate(logger, cfg.JWT),
		AllowedOrigins:         cfg.Server.AllowedOrigins,
		RequestTimeout:         cfg.Server.Timeout,
		RecommendRateLimit:     cfg.Agents.RateLimit,
		Logger:                 logger,
	})

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:        serverAddress,
		Handler:     otelhttp.NewHandler(mainRouter, "travel-planner"),
		ReadTimeout: 5 * time.Second,
		// schedule requests wait on four agents
		WriteTimeout: cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()

	<-ctx.Done()

	// --- Graceful Shutdown ---
	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
		return nil
	}
}
