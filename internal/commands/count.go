package commands

import (
	"context"
	"strconv"

	"github.com/keshon/flowbot/pkg/cmd"
)

// NewCount returns the per-guild counter group. With no sub-command it
// prints the value.
func NewCount() *cmd.Group {
	value := cmd.New(cmd.NewBase("print", categoryFun,
		cmd.Aliases("printcount", "value"),
		cmd.Description("Show the counter"),
	), printCount)

	return cmd.NewGroup(
		cmd.NewBase("count", categoryFun,
			cmd.Aliases("counter"),
			cmd.Description("A counter shared by the whole guild"),
		),
		[]cmd.Command{
			cmd.New(cmd.NewBase("add", categoryFun,
				cmd.Aliases("++"),
				cmd.Description("Add one to the counter"),
			), addCount),
			value,
			cmd.New(cmd.NewBase("clear", categoryFun,
				cmd.Description("Reset the counter"),
			), clearCount),
		},
		value,
	)
}

func addCount(ctx context.Context, c *cmd.Context) error {
	gs, err := guildSettings(c)
	if err != nil {
		return err
	}
	v, err := gs.IncrementCounter()
	if err != nil {
		return err
	}
	_, err = say(ctx, c, "countValue", map[string]string{"value": strconv.Itoa(v)}, "The value is: %d", v)
	return err
}

func printCount(ctx context.Context, c *cmd.Context) error {
	gs, err := guildSettings(c)
	if err != nil {
		return err
	}
	v, err := gs.Counter()
	if err != nil {
		return err
	}
	_, err = say(ctx, c, "countValue", map[string]string{"value": strconv.Itoa(v)}, "The value is: %d", v)
	return err
}

func clearCount(ctx context.Context, c *cmd.Context) error {
	gs, err := guildSettings(c)
	if err != nil {
		return err
	}
	if err := gs.ResetCounter(); err != nil {
		return err
	}
	_, err = say(ctx, c, "countCleared", nil, "The counter was reset.")
	return err
}
