package main

import (
	"github.com/JJublanc/tidimondo-sub001/config"
	"github.com/JJublanc/tidimondo-sub001/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.InitDB(cfg)
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}
		logger.Info("schema up to date")
		return nil
	},
}
