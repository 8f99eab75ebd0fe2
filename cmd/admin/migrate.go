package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/Chris-Carty/Piggy-Bank-Server/internal/config"
	"github.com/Chris-Carty/Piggy-Bank-Server/internal/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := withDB(migrations.Up); err != nil {
					return err
				}
				log.Println("[SUCCESS] Migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which migrations have been applied",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(migrations.Status)
			},
		},
	)

	return cmd
}

func withDB(fn func(*sql.DB) error) error {
	cfg, err := config.LoadDBConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	return fn(db)
}
