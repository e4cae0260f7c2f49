package commands

import (
	"context"
	"strings"

	"github.com/keshon/flowbot/pkg/cmd"
)

type Echo struct{ cmd.Base }

func NewEcho() *Echo {
	return &Echo{Base: cmd.NewBase("echo", categoryFun,
		cmd.Aliases("say"),
		cmd.Description("Repeat the text after the command"),
	)}
}

func (*Echo) Execute(ctx context.Context, c *cmd.Context) error {
	if len(c.Args) == 0 {
		_, err := say(ctx, c, "echoEmpty", nil, "Nothing to echo.")
		return err
	}
	if _, err := c.Reply(ctx, strings.Join(c.Args, " ")); err != nil {
		return err
	}
	return c.DeleteMessage(ctx, "echo")
}
