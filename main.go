package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/orgdir/identity-backend/shared/monitoring"
	"github.com/orgdir/identity-backend/shared/utils"
	v1 "github.com/orgdir/identity-backend/v1"
	v1handlers "github.com/orgdir/identity-backend/v1/handlers"
	v1middleware "github.com/orgdir/identity-backend/v1/middleware"
	v1services "github.com/orgdir/identity-backend/v1/services"
)

func main() {
	// Load .env file if it exists (optional - fails silently if not found)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	slog.SetDefault(logger)

	slog.Info("Starting Identity Backend initialization")

	// Initialize metrics exporters
	if err := monitoring.Initialize(monitoring.DefaultConfig("identity-backend")); err != nil {
		slog.Error("Failed to initialize monitoring", "error", err)
		os.Exit(1)
	}

	// Initialize GORM database connection
	dbConfig := v1.NewDatabaseConfig()
	gormDB, err := v1.ConnectGormDB(dbConfig)
	if err != nil {
		slog.Error("Failed to connect to GORM database", "error", err)
		os.Exit(1)
	}

	// The signing secret is process-wide and must be present at startup
	jwtSecret := os.Getenv("JWT_SECRET")
	tokenService, err := v1services.NewTokenService(jwtSecret)
	if err != nil {
		slog.Error("JWT_SECRET environment variable is required", "error", err)
		os.Exit(1)
	}

	handler := v1handlers.NewV1Handler(gormDB, tokenService)
	authMiddleware := v1middleware.NewAuthMiddleware(tokenService, v1services.NewAuthService(gormDB, tokenService))

	// Create the top-level mux for all incoming traffic
	mux := http.NewServeMux()

	// Public authentication routes
	handler.SetupAuthRoutes(mux)

	// Protected API routes behind the bearer-token middleware
	handler.SetupV1Routes(mux, authMiddleware)

	mux.Handle("/health", utils.PanicRecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		type DBHealth struct {
			Status   string `json:"status"`
			Error    string `json:"error,omitempty"`
			Database string `json:"database,omitempty"`
		}
		type HealthStatus struct {
			Status   string   `json:"status"`
			Service  string   `json:"service"`
			Database DBHealth `json:"database"`
		}

		status := HealthStatus{
			Status:  "healthy",
			Service: "identity-backend",
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		sqlDB, err := gormDB.DB()
		if err != nil {
			status.Database = DBHealth{Status: "unhealthy", Error: fmt.Sprintf("failed to get sql.DB: %v", err)}
			status.Status = "unhealthy"
		} else if err := sqlDB.PingContext(ctx); err != nil {
			status.Database = DBHealth{Status: "unhealthy", Error: err.Error()}
			status.Status = "unhealthy"
		} else {
			status.Database = DBHealth{Status: "healthy", Database: dbConfig.Database}
		}

		statusCode := http.StatusOK
		if status.Status != "healthy" {
			statusCode = http.StatusServiceUnavailable
		}

		utils.RespondWithJSON(w, statusCode, status)
	})))

	mux.Handle("/metrics", monitoring.Handler())

	// Request counters and latency histograms cover every route
	rootHandler := monitoring.HTTPMetricsMiddleware(mux)

	serverConfig := utils.DefaultServerConfig()
	server := utils.CreateServer(serverConfig, rootHandler)

	// Blocks until SIGINT/SIGTERM triggers a graceful shutdown
	if err := utils.StartServerWithGracefulShutdown(server, "identity-backend"); err != nil {
		os.Exit(1)
	}

	// Gracefully close database connection
	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}

	slog.Info("Identity Backend exited")
}
