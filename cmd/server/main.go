package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/screening-outcome-classifier/internal/api"
	"github.com/screening-outcome-classifier/internal/config"
	"github.com/screening-outcome-classifier/internal/domain"
	"github.com/screening-outcome-classifier/internal/service"
	"github.com/screening-outcome-classifier/internal/store"
)

func main() {
	configFile := flag.String("config", "", "path to config file (default: search ./config.yaml, ./config/, /etc/screening-outcome-classifier/)")
	flag.Parse()

	// Load configuration
	configManager, err := config.NewManagerFromFile(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resultStore, err := store.New(ctx, cfg.Store, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open result store")
	}
	if resultStore != nil {
		defer func() {
			if err := resultStore.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close result store")
			}
		}()
	}

	engine := service.NewOutcomeEngine(logger)
	summary := service.NewSummaryService(logger, engine, cfg.Summary.Workers)

	server, err := api.NewServer(configManager, logger, engine, summary, resultStore)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create server")
	}

	go reloadOnHangup(ctx, configManager, logger)

	logger.WithField("version", api.Version).
		Infof("Starting screening outcome classifier on %s:%d", cfg.Server.Host, cfg.Server.Port)

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Error("Server failed")
		return
	}

	logger.Info("Server stopped")
}

// reloadOnHangup re-reads the configuration on SIGHUP. Only the classification
// windows and the default report format take effect without a restart.
func reloadOnHangup(ctx context.Context, configManager domain.ConfigManager, logger *logrus.Logger) {
	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)
	defer signal.Stop(hangup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hangup:
			if err := configManager.Reload(); err != nil {
				logger.WithError(err).Error("Configuration reload failed, keeping current configuration")
				continue
			}
			logger.WithFields(logrus.Fields(configManager.GetWindowConfig().LogFields())).Info("Configuration reloaded")
		}
	}
}
