package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Middleware wraps a command (logging, history, metrics).
type Middleware func(Command) Command

// Apply applies middlewares in order; the first in the list is the outermost.
func Apply(c Command, mws ...Middleware) Command {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}

// WithLogging logs every execution with its duration and outcome.
func WithLogging(log *zap.SugaredLogger) Middleware {
	return func(next Command) Command {
		return Wrap(next, func(ctx context.Context, c *Context) error {
			start := time.Now()
			err := next.Execute(ctx, c)
			fields := []any{
				"command", next.Info().Name,
				"args", c.Args,
				"user", c.Author.ID,
				"guild", c.Message.GuildID(),
				"took", time.Since(start),
			}
			if err != nil {
				log.Infow("command failed", append(fields, "error", err)...)
				return err
			}
			log.Infow("command executed", fields...)
			return nil
		})
	}
}
