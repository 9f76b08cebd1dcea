package main

import (
	"fmt"

	"worldchat/config"
	"worldchat/internal/database"
	"worldchat/internal/logger"

	"github.com/spf13/cobra"
)

func newMigrateCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			log := logger.Init(cfg.Log)
			db, err := database.NewDB(&cfg.Database)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer database.Close(db)
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("schema up to date", "driver", cfg.Database.Driver)
			return nil
		},
	}
}
