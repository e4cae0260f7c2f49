// Package commands is the bot's command set. Each command is built on
// cmd.Base and registered through All.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/keshon/flowbot/internal/storage"
	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/cmd"
)

const (
	categoryMaintenance = "🛠️ Maintenance"
	categorySettings    = "⚙️ Settings"
	categoryFun         = "🎲 Fun"
)

// CategoryWeights orders categories in generated docs, lower first.
var CategoryWeights = map[string]int{
	"generic":           0,
	categoryFun:         20,
	categorySettings:    50,
	categoryMaintenance: 60,
}

var errNoStorage = errors.New("guild settings are not available")

// All returns every command in registration order.
func All() []cmd.Command {
	return []cmd.Command{
		NewPing(),
		NewAbout(),
		NewEcho(),
		NewSettings(),
		NewSetup(),
		NewCancel(),
		NewJobs(),
		NewCount(),
	}
}

// guildSettings returns the stored settings loaded for this invocation.
func guildSettings(c *cmd.Context) (*storage.GuildSettings, error) {
	gs, ok := c.Settings().(*storage.GuildSettings)
	if !ok || gs == nil {
		return nil, errNoStorage
	}
	return gs, nil
}

// say replies with key translated, or with the formatted fallback.
func say(ctx context.Context, c *cmd.Context, key string, args map[string]string, fallback string, fallbackArgs ...any) (*chat.Message, error) {
	if len(fallbackArgs) > 0 {
		fallback = fmt.Sprintf(fallback, fallbackArgs...)
	}
	return c.Reply(ctx, c.TranslateOr(fallback, key, args))
}

// currentPrefix is the guild prefix, or the first static one.
func currentPrefix(c *cmd.Context, record storage.Record) string {
	if record.Prefix != "" {
		return record.Prefix
	}
	if p := c.Dispatcher().Prefixes(); len(p) > 0 {
		return p[0]
	}
	return c.Prefix
}
