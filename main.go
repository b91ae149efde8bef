package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/humidor-app/humidor-be/internal/api"
	"github.com/humidor-app/humidor-be/internal/backup"
	"github.com/humidor-app/humidor-be/internal/config"
	"github.com/humidor-app/humidor-be/internal/database"
	"github.com/humidor-app/humidor-be/internal/logger"
	"github.com/humidor-app/humidor-be/internal/monitoring"
	"github.com/humidor-app/humidor-be/internal/ratelimit"
	"github.com/humidor-app/humidor-be/internal/services"
)

const appVersion = "1.0.0"

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Ensure the base directory for uploaded media exists
	if err := os.MkdirAll(cfg.UploadPath, 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create upload directory")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the backup catalog
	catalog, err := backup.New(db, cfg.BackupPath, cfg.UploadPath, appVersion, backup.DefaultTableOrder)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize backup catalog")
	}

	// Set up services
	userService := services.NewUserService(db)
	humidorService := services.NewHumidorService(db)
	shareService := services.NewShareService(db)
	cigarService := services.NewCigarService(db)
	organizerService := services.NewOrganizerService(db)

	// Set up and run the automatic backup scheduler
	scheduler := monitoring.NewScheduler(catalog, cfg.BackupSchedule)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start backup scheduler")
	}

	// Rate limiter guarding the login endpoint
	loginLimiter := ratelimit.New(5, 15*time.Minute)

	// Set up router
	router := api.NewRouter(cfg, api.Services{
		DB:           db,
		Users:        userService,
		Humidors:     humidorService,
		Shares:       shareService,
		Cigars:       cigarService,
		Organizer:    organizerService,
		Catalog:      catalog,
		LoginLimiter: loginLimiter,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	scheduler.Stop()
	loginLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
