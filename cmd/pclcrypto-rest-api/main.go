// cmd/pclcrypto-rest-api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	v1 "github.com/ftenafmar/PCLCrypto/internal/api/rest/v1"
	"github.com/ftenafmar/PCLCrypto/internal/app"
	"github.com/ftenafmar/PCLCrypto/internal/domain/keys"
	"github.com/ftenafmar/PCLCrypto/internal/infrastructure/codec"
	"github.com/ftenafmar/PCLCrypto/internal/infrastructure/persistence"
	"github.com/ftenafmar/PCLCrypto/internal/infrastructure/persistence/models"
	"github.com/ftenafmar/PCLCrypto/internal/infrastructure/platform"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/config"
	"github.com/ftenafmar/PCLCrypto/internal/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "../../configs/rest-app.yaml"
	}

	restConfig, err := config.InitializeRestConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	// Initialize logger
	if err := logger.InitLogger(&restConfig.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log, err := logger.GetLogger()
	if err != nil {
		return fmt.Errorf("failed to get logger: %w", err)
	}

	// Initialize application dependencies
	services, err := initializeServices(restConfig, log)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	// Setup and start server with graceful shutdown
	return startServerWithGracefulShutdown(restConfig, services, log)
}

// appServices holds the initialized application services
type appServices struct {
	importService   keys.KeyImportService
	exportService   keys.KeyExportService
	metadataService keys.KeyMetadataService
}

// initializeServices sets up the database, the platform key store and the
// application services on top of them.
func initializeServices(cfg *config.RestConfig, log logger.Logger) (*appServices, error) {
	db, err := persistence.NewDBConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create db connection: %w", err)
	}

	if err := db.AutoMigrate(&models.KeyRecordModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	log.Info("Database migrations completed successfully")

	keyRepo, err := persistence.NewGormKeyRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create key repository: %w", err)
	}

	store, err := platform.NewSoftwareKeyStore(log)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform key store: %w", err)
	}

	registry := codec.NewRegistry()
	handles := app.NewHandleTable()

	importService, err := app.NewKeyImportService(registry, store, keyRepo, handles, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create import service: %w", err)
	}

	exportService, err := app.NewKeyExportService(registry, handles, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create export service: %w", err)
	}

	metadataService, err := app.NewKeyMetadataService(keyRepo, handles, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata service: %w", err)
	}

	return &appServices{
		importService:   importService,
		exportService:   exportService,
		metadataService: metadataService,
	}, nil
}

// startServerWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func startServerWithGracefulShutdown(cfg *config.RestConfig, services *appServices, log logger.Logger) error {
	// Setup router
	r := gin.Default()

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup API routes
	v1.SetupRoutes(r,
		services.importService,
		services.exportService,
		services.metadataService,
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attack
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting server on port ", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		return err
	case sig := <-quit:
		log.Info("Received signal ", sig, ", initiating graceful shutdown")
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}
