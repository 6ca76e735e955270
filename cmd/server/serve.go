package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casebook/internal/activity"
	"casebook/internal/config"
	"casebook/internal/database"
	"casebook/internal/enrichment"
	"casebook/internal/jobs"
	"casebook/internal/logger"
	"casebook/internal/server"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// логгер ещё не настроен, пишем как есть
		logger.Setup("info", true)
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Setup(cfg.LogLevel, cfg.IsDevelopment())
	return cfg
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	db, err := database.Init(cfg.DBDriver, cfg.DBDSN, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init database")
	}

	store := database.NewActivityStore(db)
	audit := activity.New(store)

	parties := enrichment.New(cfg.DaData)
	if !parties.Enabled() {
		log.Warn().Msg("DADATA_API_KEY is not set, party suggestions will be empty")
	}
	cache, err := enrichment.NewRedisCache(context.Background(), cfg.RedisAddr)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, suggestion cache disabled")
	case cache != nil:
		parties.WithCache(cache, cfg.SuggestCacheTTL)
		defer cache.Close()
		log.Info().Str("addr", cfg.RedisAddr).Msg("suggestion cache enabled")
	}

	retention := jobs.NewRetentionWorker(store, cfg.AuditRetentionDays)
	if err := retention.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start retention job")
	}

	r := server.NewRouter(server.Deps{
		Config:   cfg,
		DB:       db,
		Activity: audit,
		Parties:  parties,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	retention.Stop()
	// дописываем журнал действий, пока база ещё открыта
	audit.Wait()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
