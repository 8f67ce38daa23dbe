package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/debt-manager/internal/cli"
	"github.com/Veraticus/debt-manager/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates automatically; this one is useful to prepare
a database ahead of time or to check its version with --status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if status {
				store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
				if err != nil {
					return fmt.Errorf("failed to open database: %w", err)
				}
				defer func() { _ = store.Close() }()

				current, err := store.SchemaVersion(ctx)
				if err != nil {
					return err
				}
				writeLine(out, fmt.Sprintf("Database:        %s", cfg.DatabasePath))
				writeLine(out, fmt.Sprintf("Current version: %d", current))
				writeLine(out, fmt.Sprintf("Latest version:  %d", storage.ExpectedSchemaVersion))
				if current < storage.ExpectedSchemaVersion {
					writeLine(out, cli.FormatWarning("Migrations pending; run 'debt migrate'"))
				}
				return nil
			}

			slog.Info("Running database migrations", "database", cfg.DatabasePath)

			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			writeLine(out, cli.FormatSuccess(fmt.Sprintf("Database at schema version %d", storage.ExpectedSchemaVersion)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "show schema version without applying changes")

	return cmd
}
