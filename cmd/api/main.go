package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	_ "github.com/campus-compass/campus-compass-api/docs" // Swagger docs (generated)
	"github.com/campus-compass/campus-compass-api/internal/config"
	"github.com/campus-compass/campus-compass-api/internal/database"
	"github.com/campus-compass/campus-compass-api/internal/email"
	httpServer "github.com/campus-compass/campus-compass-api/internal/http"
	"github.com/campus-compass/campus-compass-api/internal/logging"
	"github.com/campus-compass/campus-compass-api/internal/moderation"
	"github.com/campus-compass/campus-compass-api/internal/otp"
	"github.com/campus-compass/campus-compass-api/internal/ratelimit"
)

// @title           Campus Compass API
// @version         1.0
// @description     Email OTP verification and content moderation services for the Campus Compass review platform.

// @contact.name   API Support
// @contact.email  support@campuscompass.app

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window)

	// Initialize OTP dependencies
	fingerprints, err := otp.NewFingerprinter(cfg.OTP.FingerprintKey)
	if err != nil {
		return fmt.Errorf("failed to initialize fingerprinter: %w", err)
	}

	ticketService, err := otp.NewTicketService(cfg.OTP.TicketKey)
	if err != nil {
		return fmt.Errorf("failed to initialize ticket service: %w", err)
	}

	otpRepo := otp.NewPostgresRepository(db)
	emailService := email.NewService(
		cfg.Email.SendGridAPIKey,
		cfg.Email.FromName,
		cfg.Email.FromAddress,
	)

	otpService := otp.NewService(
		otpRepo,
		emailService,
		fingerprints,
		ticketService,
		logger,
		cfg.OTP.Expiry,
		cfg.OTP.RateLimitWindow,
		cfg.OTP.MaxAttempts,
		cfg.OTP.TicketDuration,
	)

	// Initialize moderation dependencies
	matcher, err := moderation.NewMatcher()
	if err != nil {
		return fmt.Errorf("failed to load keyword list: %w", err)
	}

	var classifier moderation.Classifier
	if cfg.Moderation.OpenAIAPIKey != "" {
		classifier = moderation.NewOpenAIClassifier(cfg.Moderation.OpenAIAPIKey, cfg.Moderation.Timeout)
	} else {
		logger.Warn("OPENAI_API_KEY not set, AI moderation stage disabled")
	}

	verdictCache := moderation.NewVerdictCache(redisClient, cfg.Moderation.CacheTTL)
	moderationService := moderation.NewService(matcher, classifier, verdictCache, logger)

	// Initialize HTTP handlers
	otpHandler := otp.NewHandler(otpService, rateLimiter, logger)
	moderationHandler := moderation.NewHandler(moderationService, rateLimiter, logger)

	// Initialize router
	router := httpServer.NewRouter(cfg, otpHandler, moderationHandler, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	// Periodically remove expired verification records
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.OTP.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				removed, err := otpService.CleanupExpired(context.Background())
				if err != nil {
					logger.Error("failed to cleanup expired records", "error", err.Error())
				} else if removed > 0 {
					logger.Info("removed expired verification records", "count", removed)
				}
			case <-cleanupDone:
				return
			}
		}
	}()
	defer close(cleanupDone)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	// Create Bun DB wrapper
	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
