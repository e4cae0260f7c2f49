// cmd/cli/main.go runs the bot in the terminal.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/flowbot/internal/bot"
	"github.com/keshon/flowbot/internal/config"
	"github.com/keshon/flowbot/internal/console"
	"github.com/keshon/flowbot/internal/logging"
	"github.com/keshon/flowbot/pkg/chat"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	// keep stdout for the conversation
	if cfg.LogLevel == "info" {
		cfg.LogLevel = "warn"
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := console.NewClient(os.Stdout, "flowbot")
	hub := chat.NewHub()
	defer hub.Close()

	b, err := bot.New(cfg, logger, client, hub, console.UserID)
	if err != nil {
		logger.Fatalw("failed to set up bot", "error", err)
	}
	defer b.Close()

	fmt.Printf("flowbot console. Prefixes: %v. Type :quit to exit.\n", b.Dispatcher.Prefixes())
	if err := console.NewPump(client, hub, b.Router, "you").Run(ctx, os.Stdin); err != nil {
		logger.Errorw("console stopped", "error", err)
	}
	b.Router.Wait()
}
