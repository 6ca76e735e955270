package main

import (
	"casebook/internal/database"
	"casebook/internal/jobs"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runPrune(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	days := cfg.AuditRetentionDays
	if cmd.Flags().Changed("days") {
		days = pruneDays
	}
	if days <= 0 {
		log.Info().Msg("retention is disabled, nothing to prune")
		return
	}

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	n, err := jobs.NewRetentionWorker(database.NewActivityStore(db), days).RunOnce(cmd.Context())
	if err != nil {
		log.Fatal().Err(err).Msg("prune failed")
	}
	cmd.Printf("deleted %d activity log entries\n", n)
}
