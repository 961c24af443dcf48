package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/printtts/shiplabel-backend/config"
	"github.com/printtts/shiplabel-backend/internal/app/controller"
	"github.com/printtts/shiplabel-backend/internal/app/repository"
	"github.com/printtts/shiplabel-backend/internal/app/service"
	"github.com/printtts/shiplabel-backend/internal/db"
	"github.com/printtts/shiplabel-backend/internal/middleware"
	"github.com/printtts/shiplabel-backend/internal/router"
	"github.com/printtts/shiplabel-backend/internal/scheduler"
	"github.com/printtts/shiplabel-backend/internal/storage"
	"github.com/printtts/shiplabel-backend/pkg/logger"
	"github.com/printtts/shiplabel-backend/pkg/redis"
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

	logger.Info("Starting Shiplabel Backend Server", map[string]interface{}{
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

	// Redis backs token revocation and session activity tracking. The
	// server still works without it.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close redis connection", err)
		}
	}()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	accountRepo := repository.NewAccountRepository(db.GetDB())
	shipmentRepo := repository.NewShipmentRepository(db.GetDB())
	addressRepo := repository.NewAddressRepository(db.GetDB())
	packageRepo := repository.NewPackageRepository(db.GetDB())
	purchaseRepo := repository.NewPurchaseRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(userRepo, accountRepo, db.GetDB(), cfg.JWT)
	importService := service.NewImportService(shipmentRepo, db.GetDB(), cfg.Import)
	shipmentService := service.NewShipmentService(shipmentRepo, db.GetDB())
	purchaseService := service.NewPurchaseService(shipmentRepo, accountRepo, purchaseRepo, db.GetDB())
	presetService := service.NewPresetService(addressRepo, packageRepo)

	// Upload archiving is off unless an S3 bucket is configured.
	var archiver storage.UploadArchiver
	if s3Store := storage.NewS3Storage(&cfg.S3); s3Store != nil {
		archiver = s3Store
	}

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	shipmentController := controller.NewShipmentController(shipmentService)
	uploadController := controller.NewUploadController(importService, archiver)
	purchaseController := controller.NewPurchaseController(purchaseService)
	presetController := controller.NewPresetController(presetService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	sessionMiddleware := middleware.NewSessionMiddleware(cfg.Session)

	// Setup router
	r := router.NewRouter(
		authController,
		shipmentController,
		uploadController,
		purchaseController,
		presetController,
		authMiddleware,
		sessionMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start stale session cleanup
	cleanupScheduler := scheduler.NewSessionCleanupScheduler(shipmentRepo, cfg.Session)
	if err := cleanupScheduler.Start(); err != nil {
		logger.Error("Failed to start session cleanup scheduler", err)
	}
	defer cleanupScheduler.Stop()

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
	logger.Info("Server stopped successfully")
}
