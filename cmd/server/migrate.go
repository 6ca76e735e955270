package main

import (
	"casebook/internal/database"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations and seed defaults",
	Run:   runMigrate,
}

var pruneCmd = &cobra.Command{
	Use:   "prune-activity",
	Short: "Delete activity log entries older than AUDIT_RETENTION_DAYS",
	Run:   runPrune,
}

var pruneDays int

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().IntVar(&pruneDays, "days", 0, "Retention in days (overrides AUDIT_RETENTION_DAYS)")
}

func runMigrate(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	db, err := database.Init(cfg.DBDriver, cfg.DBDSN, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("migrations applied")
}
