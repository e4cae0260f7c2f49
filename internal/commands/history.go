package commands

import (
	"context"
	"strings"
	"time"

	"github.com/keshon/flowbot/internal/storage"
	"github.com/keshon/flowbot/pkg/cmd"
)

// WithHistory records guild invocations in the command history before they
// run. Failing to record does not stop the command.
func WithHistory(store *storage.Storage) cmd.Middleware {
	return func(next cmd.Command) cmd.Command {
		return cmd.Wrap(next, func(ctx context.Context, c *cmd.Context) error {
			if c.Guild != nil {
				rec := storage.CommandHistoryRecord{
					ChannelID: c.Message.ChannelID(),
					GuildName: c.Guild.Name,
					UserID:    c.Author.ID,
					Username:  c.Author.Username,
					Command:   next.Info().Name,
					Param:     strings.Join(c.Args, " "),
					Datetime:  time.Now(),
				}
				if c.Channel != nil {
					rec.ChannelName = c.Channel.Name
				}
				if err := store.AppendCommandToHistory(c.Guild.ID, rec); err != nil {
					c.Dispatcher().Logger().Warnw("failed to log command", "command", rec.Command, "error", err)
				}
			}
			return next.Execute(ctx, c)
		})
	}
}
