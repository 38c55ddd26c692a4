package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stepbookstep/server/internal/config"
	"github.com/stepbookstep/server/internal/db"
	"github.com/stepbookstep/server/internal/logger"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or inspect database migrations",
	}

	cmd.AddCommand(migrateStep("up", "Apply all pending migrations", db.RunMigrations))
	cmd.AddCommand(migrateStep("down", "Roll back the most recent migration", db.MigrateDown))
	cmd.AddCommand(migrateStep("status", "Print applied and pending migrations", db.MigrationStatus))
	return cmd
}

func migrateStep(use, short string, step db.MigrationFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.IsDevelopment(), "", cfg.LogLevel)

			database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer db.Close(database)

			return step(database.DB, cfg.DBDriver)
		},
	}
}
