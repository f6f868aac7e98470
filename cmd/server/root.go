package main

import (
	"fmt"
	"log/slog"

	"github.com/clinicsys/clinic-api/internal/config"
	"github.com/clinicsys/clinic-api/internal/platform/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "clinic-api",
		Short:        "Multi-tenant student records API",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// A missing .env file is normal outside local development.
			_ = godotenv.Load()
		},
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedAdminCmd(),
	)
	return root
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)
	return cfg, log, nil
}
