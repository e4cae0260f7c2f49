// cmd/discord/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/flowbot/internal/bot"
	"github.com/keshon/flowbot/internal/config"
	"github.com/keshon/flowbot/internal/discord"
	"github.com/keshon/flowbot/internal/logging"
	"github.com/keshon/flowbot/internal/version"
	"github.com/keshon/flowbot/pkg/cmd"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.ValidateDiscord(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	build := version.Get()
	logger.Infow("starting discord bot", "version", build.Version, "commit", build.Commit, "prefixes", cfg.Prefixes)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := discord.New(cfg, logger)
	if err != nil {
		logger.Fatalw("failed to create session", "error", err)
	}

	b, err := bot.New(cfg, logger, session.Client(), session.Hub())
	if err != nil {
		logger.Fatalw("failed to set up bot", "error", err)
	}
	defer b.Close()
	if cfg.MentionPrefix {
		b.Dispatcher.AddPrefixLoader(cmd.MentionPrefix(session.Client().Self))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- session.Run(ctx, b.Router)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Infow("received signal, shutting down", "signal", s.String())
		cancel()
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil {
		logger.Errorw("discord bot error", "error", err)
		return
	}
	logger.Infow("discord bot exited cleanly")
}
