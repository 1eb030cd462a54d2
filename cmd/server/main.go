package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/gatewarden/gatewarden/configs"
	"github.com/gatewarden/gatewarden/internal/application/services"
	"github.com/gatewarden/gatewarden/internal/core/domain/ratelimit"
	"github.com/gatewarden/gatewarden/internal/core/ports"
	"github.com/gatewarden/gatewarden/internal/infrastructure/db"
	"github.com/gatewarden/gatewarden/internal/infrastructure/email"
	"github.com/gatewarden/gatewarden/internal/infrastructure/health"
	"github.com/gatewarden/gatewarden/internal/infrastructure/httpserver"
	"github.com/gatewarden/gatewarden/internal/infrastructure/redis"
	"github.com/gatewarden/gatewarden/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting Gatewarden access control service...")

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Run migrations
	if err := database.Migrate("./migrations"); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	clock := ports.SystemClock()

	// Initialize repository implementations
	windowRepo := repositories.NewWindowRepository(database, logger)
	listRepo := repositories.NewListRepository(database, logger)
	eventRepo := repositories.NewEventRepository(database, logger)

	var violationCounter ports.ViolationCounter
	if cfg.Guard.ViolationCounter == "windows" {
		violationCounter = repositories.NewWindowViolationCounter(windowRepo)
	} else {
		violationCounter = repositories.NewViolationRedisRepository(redisClient)
	}

	// Initialize alert delivery
	alertConfig := &email.AlertConfig{
		SendGridAPIKey: cfg.Email.SendGridAPIKey,
		FromEmail:      cfg.Email.FromEmail,
		FromName:       cfg.Email.FromName,
		AlertEmail:     cfg.Email.AlertEmail,
	}
	alertService, err := email.NewAlertService(alertConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize alert service:", err)
	}

	// Wire all services with their repository dependencies
	auditService := services.NewAuditService(eventRepo, clock, logger)

	guardConfig := &services.GuardConfig{
		ViolationThreshold:    cfg.Guard.ViolationThreshold,
		ViolationLookback:     cfg.Guard.ViolationLookback,
		AutoBlacklistDuration: cfg.Guard.AutoBlacklistDuration,
	}
	guardService := services.NewAccessGuardService(listRepo, violationCounter, auditService, alertService, clock, guardConfig, logger)

	policies := ratelimit.NewPolicyTable(nil)
	limiterService := services.NewRateLimiterService(windowRepo, policies, clock, logger)

	engine := services.NewDecisionEngineService(guardService, limiterService, auditService, logger)

	reportService := services.NewReportService(windowRepo, listRepo, eventRepo, clock, logger)

	hcSlice := []ports.HealthChecker{health.NewDBHealthChecker(database), health.NewRedisHealthChecker(redisClient)}

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}

	// Initialize HTTP server using ServerDeps for clearer wiring
	deps := httpserver.ServerDeps{
		DecisionEngine: engine,
		RateLimiter:    limiterService,
		ListAdmin:      guardService,
		Reports:        reportService,
		HealthCheckers: hcSlice,
	}

	server := httpserver.NewServer(serverConfig, cfg.JWT.Secret, logger, deps)

	// Periodically purge stale windows so pruning is not left entirely
	// to the request path.
	purgeCtx, stopPurge := context.WithCancel(context.Background())
	defer stopPurge()
	go func() {
		ticker := time.NewTicker(cfg.Windows.PurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-purgeCtx.Done():
				return
			case <-ticker.C:
				cutoff := clock.Now().Add(-cfg.Windows.PurgeRetention)
				if _, err := windowRepo.Purge(purgeCtx, cutoff); err != nil {
					logger.WithError(err).Warn("Failed to purge stale rate windows")
				}
			}
		}
	}()

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopPurge()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
