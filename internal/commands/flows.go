package commands

import (
	"context"
	"errors"

	"github.com/keshon/flowbot/pkg/cmd"
	"github.com/keshon/flowbot/pkg/jobmgr"
)

type Cancel struct{ cmd.Base }

func NewCancel() *Cancel {
	return &Cancel{Base: cmd.NewBase("cancel", categoryMaintenance,
		cmd.Aliases("stop"),
		cmd.Description("Close your open menu in this channel"),
		cmd.AllowDM(),
	)}
}

func (*Cancel) Execute(ctx context.Context, c *cmd.Context) error {
	err := c.Dispatcher().Flows().Stop(c.FlowKey())
	if errors.Is(err, jobmgr.ErrJobNotRunning) {
		_, err = say(ctx, c, "cancelNothing", nil, "Nothing to cancel.")
	}
	return err
}

type Jobs struct{ cmd.Base }

func NewJobs() *Jobs {
	return &Jobs{Base: cmd.NewBase("jobs", categoryMaintenance,
		cmd.Description("List running menus"),
		cmd.OwnerOnly(),
		cmd.Hidden(),
		cmd.AllowDM(),
	)}
}

func (*Jobs) Execute(ctx context.Context, c *cmd.Context) error {
	_, err := c.Reply(ctx, c.Dispatcher().Flows().Status())
	return err
}
