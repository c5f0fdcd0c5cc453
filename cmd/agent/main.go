package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soundvault/soundvault-agent/internal/api"
	"github.com/soundvault/soundvault-agent/internal/catalog"
	"github.com/soundvault/soundvault-agent/internal/config"
	"github.com/soundvault/soundvault-agent/internal/dataset"
	"github.com/soundvault/soundvault-agent/internal/db"
	"github.com/soundvault/soundvault-agent/internal/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting soundvault agent",
		"version", config.Version,
		"data_dir", logging.SanitizePath(cfg.DataDir()),
		"dataset_dir", logging.SanitizePath(cfg.DatasetDir()),
	)

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := catalog.NewRepository(database.Conn())
	catalogSvc := catalog.NewService(repo, logger)

	// A dataset root that cannot be provisioned or written is fatal
	// here, never a per-request error.
	store, err := dataset.NewStore(dataset.StoreConfig{
		Root:      cfg.DatasetDir(),
		Extension: cfg.AudioExtension(),
		Logger:    logging.WithComponent(logger, "dataset"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize dataset store: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Soundvault Agent v%s\n", config.Version)
	fmt.Printf("  API URL:     http://0.0.0.0:%d\n", cfg.Port())
	fmt.Printf("  Dataset dir: %s\n", cfg.DatasetDir())
	fmt.Println()

	apiServer := api.NewServer(api.ServerConfig{
		Port:           cfg.Port(),
		Store:          store,
		Catalog:        catalogSvc,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		AllowedOrigins: cfg.AllowedOrigins(),
		Logger:         logger,
		StartTime:      startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
