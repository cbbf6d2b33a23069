package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skywise/flightnet/internal/api"
	"github.com/skywise/flightnet/internal/config"
	"github.com/skywise/flightnet/internal/storage"
	"github.com/skywise/flightnet/internal/storage/postgres"
	"github.com/skywise/flightnet/internal/storage/sqlite"
	"github.com/skywise/flightnet/internal/weather"
	"github.com/skywise/flightnet/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Load configuration with fallback logic
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting flightnet server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create the entity store for the configured backend
	var store storage.Store
	switch cfg.Database.Driver {
	case "postgres":
		store, err = postgres.NewStore(ctx, postgres.Config{
			Host:     cfg.Database.PostgresHost,
			Port:     cfg.Database.PostgresPort,
			User:     cfg.Database.PostgresUser,
			Password: cfg.Database.PostgresPassword,
			Database: cfg.Database.PostgresDatabase,
			SSLMode:  cfg.Database.PostgresSSLMode,
		}, log)
	case "sqlite":
		store, err = sqlite.NewStore(cfg.Database.SQLitePath, log)
	}
	if err != nil {
		log.Error("Failed to create store", logger.Error(err), logger.String("driver", cfg.Database.Driver))
		os.Exit(1)
	}
	defer store.Close()

	// Create weather service (if enabled)
	var weatherService *weather.Service
	if cfg.Weather.Enabled {
		weatherService = weather.NewService(weather.Config{
			Enabled:               cfg.Weather.Enabled,
			APIBaseURL:            cfg.Weather.APIBaseURL,
			RequestTimeoutSeconds: cfg.Weather.RequestTimeoutSeconds,
			CacheExpiryMinutes:    cfg.Weather.CacheExpiryMinutes,
		}, log)
		log.Info("Weather enrichment enabled", logger.String("api_base_url", cfg.Weather.APIBaseURL))
	} else {
		log.Info("Weather enrichment disabled in configuration")
	}

	// Create API router
	router := api.NewRouter(store, weatherService, cfg, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error on startup", logger.String("addr", server.Addr), logger.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Error(err))
	} else {
		log.Info("HTTP server shutdown complete")
	}

	log.Info("Server fully stopped")
}
