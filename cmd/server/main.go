package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oboteam/guarantor-backend/config"
	"github.com/oboteam/guarantor-backend/internal/app/controller"
	"github.com/oboteam/guarantor-backend/internal/app/repository"
	"github.com/oboteam/guarantor-backend/internal/app/service"
	"github.com/oboteam/guarantor-backend/internal/db"
	"github.com/oboteam/guarantor-backend/internal/mailer"
	"github.com/oboteam/guarantor-backend/internal/middleware"
	"github.com/oboteam/guarantor-backend/internal/router"
	"github.com/oboteam/guarantor-backend/internal/scheduler"
	"github.com/oboteam/guarantor-backend/pkg/logger"
	"github.com/oboteam/guarantor-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Guarantor Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize Redis (pending reset codes)
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to initialize Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// Initialize mail queue
	smtpMailer := mailer.New(&cfg.SMTP)
	mailQueue := mailer.NewQueue(smtpMailer, cfg.Reset.MailWorkers, cfg.Reset.MailQueueCap)
	mailQueue.Start()
	defer mailQueue.Stop()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	resetCodeRepo := repository.NewResetCodeRepository(redis.GetClient())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
	)
	userService := service.NewUserService(userRepo)
	passwordResetService := service.NewPasswordResetService(
		userRepo,
		resetCodeRepo,
		mailQueue,
		cfg.Reset.CodeTTL,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController(userService)
	passwordController := controller.NewPasswordController(passwordResetService, userService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start background purge of soft-deleted users
	purgeScheduler := scheduler.NewUserPurgeScheduler(userRepo)
	if err := purgeScheduler.Start(); err != nil {
		logger.Fatal("Failed to start user purge scheduler", err)
	}
	defer purgeScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		userController,
		passwordController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
}
