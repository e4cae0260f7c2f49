package commands

import (
	"context"
	"strconv"
	"time"

	"github.com/keshon/flowbot/pkg/cmd"
)

// latencyReporter is implemented by clients that hold a gateway connection.
type latencyReporter interface {
	HeartbeatLatency() time.Duration
}

type Ping struct{ cmd.Base }

func NewPing() *Ping {
	return &Ping{Base: cmd.NewBase("ping", categoryMaintenance,
		cmd.Aliases("pong"),
		cmd.Description("Check bot latency"),
		cmd.AllowDM(),
	)}
}

func (*Ping) Execute(ctx context.Context, c *cmd.Context) error {
	msg, err := c.Reply(ctx, c.TranslateOr("Calculating...", "pingCalculating", nil))
	if err != nil {
		return err
	}

	rtt := msg.CreatedAt.Sub(c.Message.CreatedAt).Milliseconds()
	gateway := "n/a"
	if lr, ok := c.Client().(latencyReporter); ok {
		gateway = strconv.FormatInt(lr.HeartbeatLatency().Milliseconds(), 10) + "ms"
	}

	text := c.TranslateOr("Ping: "+strconv.FormatInt(rtt, 10)+"ms | Websocket: "+gateway, "pingResult", map[string]string{
		"ping":    strconv.FormatInt(rtt, 10),
		"gateway": gateway,
	})
	_, err = c.Edit(ctx, msg, text)
	return err
}
