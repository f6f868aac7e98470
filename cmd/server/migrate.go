package main

import (
	"github.com/clinicsys/clinic-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version|reset]",
		Short:     "Apply or inspect database migrations",
		Long:      "Runs a migration command against the configured database. Defaults to up.",
		ValidArgs: postgres.MigrationCommands,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			cfg, log, err := initializeApp()
			if err != nil {
				return err
			}

			db, err := postgres.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					log.Error("failed to close database connection", "error", err)
				}
			}()

			return postgres.Migrate(cmd.Context(), db, command, log)
		},
	}
}
