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

	"github.com/abbasiconnect/api/internal/auth"
	"github.com/abbasiconnect/api/internal/config"
	"github.com/abbasiconnect/api/internal/database"
	"github.com/abbasiconnect/api/internal/email"
	httpServer "github.com/abbasiconnect/api/internal/http"
	"github.com/abbasiconnect/api/internal/location"
	"github.com/abbasiconnect/api/internal/logging"
	"github.com/abbasiconnect/api/internal/post"
	"github.com/abbasiconnect/api/internal/ratelimit"
	"github.com/abbasiconnect/api/internal/user"
	"github.com/abbasiconnect/api/internal/vouch"
)

// @title           AbbasiConnect API
// @version         1.0
// @description     Community API with email OTP authentication, vouch-based verification, posts, and nearby member search.

// @contact.name   API Support
// @contact.email  support@abbasiconnect.com

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

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

	// Initialize repositories
	userRepo := user.NewRepository(db)
	otpRepo := auth.NewOTPRepository(db)
	sessionRepo := auth.NewSessionRepository(db)
	vouchRepo := vouch.NewRepository(db)
	postRepo := post.NewRepository(db)
	locationRepo := location.NewRepository(db)

	// Initialize rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// Initialize email service
	emailService := email.NewService(cfg.Email, logger)

	// Initialize services
	authService := auth.NewService(
		otpRepo,
		sessionRepo,
		userRepo,
		emailService,
		logger,
		cfg.Auth.OTPExpiry,
		cfg.Auth.OTPWindow,
		cfg.Auth.OTPMaxRequests,
		cfg.Auth.SessionDuration,
	)
	userService := user.NewService(userRepo, logger)
	vouchService := vouch.NewService(vouchRepo, userRepo, logger)
	postService := post.NewService(postRepo, userRepo, logger)
	locationService := location.NewService(locationRepo, cfg.Location, logger)

	// Initialize HTTP handlers
	handlers := httpServer.Handlers{
		Auth:     auth.NewHandler(authService, rateLimiter, logger, !cfg.Server.IsDevelopment()),
		User:     user.NewHandler(userService),
		Vouch:    vouch.NewHandler(vouchService),
		Post:     post.NewHandler(postService, logger),
		Location: location.NewHandler(locationService, logger),
	}
	authMiddleware := auth.NewMiddleware(authService)

	// Initialize router
	router := httpServer.NewRouter(cfg, handlers, authMiddleware, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Periodically remove expired OTP codes and sessions
	cleanupDone := make(chan struct{})
	go runCleanup(authService, cfg.Auth.CleanupInterval, logger, cleanupDone)
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
		logger.Info("received shutdown signal", "signal", sig.String())

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// runCleanup sweeps expired auth records until done is closed.
func runCleanup(authService *auth.Service, interval time.Duration, logger *logging.Logger, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := authService.CleanupExpired(ctx); err != nil {
				logger.Error("auth cleanup failed", "error", err)
			}
			cancel()
		case <-done:
			return
		}
	}
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
