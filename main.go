// main.go
//
// Process entry point for the matching-game server.
// Responsibilities:
//   - Load .env and typed configuration; set the log level.
//   - Load the level catalog (embedded, or LEVELS_FILE).
//   - Open and migrate the results database.
//   - Serve HTTP, sweep idle sessions, and shut down cleanly on SIGINT/SIGTERM.

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

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/qmcDevelopment/auditoria-iso/internal/config"
	"github.com/qmcDevelopment/auditoria-iso/internal/content"
	"github.com/qmcDevelopment/auditoria-iso/internal/game"
	"github.com/qmcDevelopment/auditoria-iso/internal/httpserver"
	"github.com/qmcDevelopment/auditoria-iso/internal/results"
	"github.com/qmcDevelopment/auditoria-iso/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cat, err := content.Load(cfg.LevelsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.LevelsFile).Msg("failed to load levels")
	}
	log.Info().Int("levels", cat.Len()).Str("title", cat.Title).Msg("catalog loaded")

	db, err := results.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open results db")
	}
	defer db.Close()
	if err := results.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate results db")
	}

	sessions := store.NewMemoryStore()
	srv := httpserver.New(httpserver.Options{
		Catalog:       cat,
		Sessions:      sessions,
		Results:       results.NewStore(db),
		Rules:         cfg.Game.Rules(),
		Scheduler:     game.SystemScheduler,
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: cfg.SecureCookies(),
		ClientOrigin:  cfg.ClientOrigin,
		DailySalt:     cfg.DailySalt,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper, err := startSweeper(sessions, cfg.SessionTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start session sweeper")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting matchgame server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	<-sweeper.Stop().Done()
	// Pending timers must not record results once the db is closed.
	if n := sessions.CloseAll(shutdownCtx); n > 0 {
		log.Info().Int("closed", n).Msg("live sessions closed")
	}
}

// startSweeper closes sessions that have not been used for ttl.
func startSweeper(sessions store.Store, ttl time.Duration) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC))
	every := max(min(ttl, time.Minute), time.Second)
	_, err := c.AddFunc("@every "+every.String(), func() {
		if n := sessions.Sweep(context.Background(), time.Now().Add(-ttl)); n > 0 {
			log.Info().Int("closed", n).Msg("idle sessions swept")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("add sweep job: %w", err)
	}
	c.Start()
	return c, nil
}
