package commands

import (
	"context"

	"github.com/keshon/flowbot/internal/version"
	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/cmd"
)

type About struct{ cmd.Base }

func NewAbout() *About {
	return &About{Base: cmd.NewBase("about", categoryMaintenance,
		cmd.Aliases("version"),
		cmd.Description("Show the bot version"),
		cmd.AllowDM(),
	)}
}

func (*About) Execute(ctx context.Context, c *cmd.Context) error {
	info := version.Get()
	commit := info.Commit
	if commit == "" {
		commit = "unknown"
	}
	embed := &chat.Embed{
		Title:       "ℹ️ About " + version.AppName,
		Description: version.AppDescription,
	}
	embed.AddField("Version", info.Version, true).
		AddField("Commit", commit, true).
		AddField("Release", info.Release(), false)
	_, err := c.ReplyEmbed(ctx, embed)
	return err
}
