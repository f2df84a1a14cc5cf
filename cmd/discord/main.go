// cmd/discord/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"server-warden/internal/commands"
	"server-warden/internal/config"
	"server-warden/internal/discord"
	"server-warden/internal/logger"
	"server-warden/internal/moderation"
	"server-warden/internal/storage"
	"server-warden/pkg/jobmgr"

	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("discord bot exited with error")
	}
	log.Info().Msg("discord bot exited cleanly")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	log.Info().Str("storage", cfg.StoragePath).Msg("starting bot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(cfg.StoragePath, log.With().Str("component", "datastore").Logger())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	bot, err := discord.NewBot(cfg, store, log.With().Str("component", "discord").Logger())
	if err != nil {
		return err
	}

	jobs := jobmgr.NewManager(log.With().Str("component", "jobs").Logger())
	defer func() {
		// Pending denial notices are deleted before exit.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := jobs.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("pending jobs did not finish")
		}
	}()

	platform := bot.Platform()
	audit := discord.NewAuditChannel(store, platform, jobs, log.With().Str("component", "audit").Logger())
	workflow := moderation.New(
		platform,
		audit,
		store,
		moderation.Config{
			Logger:    log.With().Str("component", "moderation").Logger(),
			DenialTTL: cfg.DenialMessageTTL,
			Jobs:      jobs,
		},
	)

	registry, err := commands.Build(commands.Options{
		Prefix:   cfg.CommandPrefix,
		Cooldown: cfg.CommandCooldown,
		Logger:   log.With().Str("component", "commands").Logger(),
	}, workflow)
	if err != nil {
		return err
	}

	filter := moderation.NewWordFilter(platform, store, audit, moderation.FilterConfig{
		Logger:     log.With().Str("component", "wordfilter").Logger(),
		WarningTTL: cfg.FilterWarningTTL,
		Jobs:       jobs,
	})

	errCh := make(chan error, 1)
	go func() {
		// Run returns after running handlers finished, before storage closes.
		errCh <- bot.Run(ctx, registry, filter)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		return <-errCh
	case err := <-errCh:
		return err
	}
}
