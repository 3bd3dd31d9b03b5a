package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/docs/swagger"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/api"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/config"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/db"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/handlers"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/services"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/tasks"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

// 🚀 Main function
// @title Media Hub API
// @version 1.0
// @description Course media entitlement, range streaming and sales hierarchy API.
// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {

	logger := logger.New("mediahub")

	// check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		logger.Info("No .env file found, skipping environment variable loading")
	} else {
		logger.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		err := db.Close()
		if err != nil {
			log.Fatalf("Failed to close database connection: %v", err)
		}
	}()

	dbInstance := db.GetDB()

	// Initialize task handlers
	taskHandler := tasks.NewTaskHandler(dbInstance)

	// Initialize task server
	taskServer := tasks.NewServer(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		taskHandler,
		logger,
	)

	// Create a context for task server
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	// Start task server
	go func() {
		if err := taskServer.Start(serverCtx); err != nil {
			logger.Error("Task server error", err)
		}
	}()

	// Initialize task scheduler
	taskScheduler := tasks.NewScheduler(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		logger,
	)

	// Start task scheduler
	go func() {
		if err := taskScheduler.Start(); err != nil {
			logger.Error("Task scheduler error", err)
		}
	}()

	// Initialize API server
	apiServer := api.NewServer(cfg, dbInstance)
	go func() {

		// The S3 backend is optional; local storage streams straight from
		// disk through the stream routes.
		if cfg.Storage.Provider == "s3" || cfg.Storage.Provider == "r2" {
			s3Service, err := services.NewS3Service(
				cfg.Storage.S3.BucketName,
				cfg.Storage.S3.Endpoint,
				cfg.Storage.S3.Region,
				cfg.Storage.S3.AccessKey,
				cfg.Storage.S3.SecretKey,
			)
			if err != nil {
				log.Fatalf("Failed to initialize S3 service: %v", err)
			}

			// Register the URL generator
			models.RegisterFileURLGenerator(s3Service)
			handlers.RegisterStorageHandler(s3Service)
		} else {
			logger.Info("Local storage provider, streaming from %s", cfg.Storage.BasePath)
		}

		logger.Success("API server started")

		// Swagger documentation
		swagger.SwaggerInfo.Title = "Media Hub API Documentation"
		swagger.SwaggerInfo.Description = "Course media entitlement, range streaming and sales hierarchy API"
		swagger.SwaggerInfo.Version = "1.0"
		swagger.SwaggerInfo.Host = cfg.Server.PublicURL
		swagger.SwaggerInfo.Schemes = []string{"https", "http"}

		if err := apiServer.Start(); err != nil {
			logger.Error("API server error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Create a deadline for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop task scheduler
	taskScheduler.Stop()

	// Stop task server
	serverCancel()

	// Shutdown API server
	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown API server", err)
	}

	logger.Info("Servers shutdown gracefully")
}
