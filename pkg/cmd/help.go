package cmd

import (
	"context"
	"strings"

	"github.com/keshon/flowbot/pkg/chat"
)

// Help lists visible commands by category, or describes one command.
type Help struct {
	Base
	// Color of the embeds it sends.
	Color int
}

// NewHelp returns the built-in help command.
func NewHelp() *Help {
	return &Help{
		Base: NewBase("help", "generic",
			Aliases("docs", "hey", "hi"),
			Description("The help command helps you learn how to use the bot."),
		),
		Color: 0x5865F2,
	}
}

func (h *Help) Execute(ctx context.Context, c *Context) error {
	if len(c.Args) == 0 {
		_, err := c.ReplyEmbed(ctx, h.overview(c))
		return err
	}

	name := c.Args[0]
	target, ok := c.dispatcher.registry.Get(name)
	if !ok {
		_, err := c.Reply(ctx, c.TranslateOr("Command not found.", "helpCommandNotFound", nil))
		return err
	}

	info := target.Info()
	embed := &chat.Embed{
		Title: c.TranslateOr("Command "+name, "helpCommandDocTitle",
			map[string]string{"commandName": name}),
		Description: c.TranslateOr(info.Description, "helpCommandDocDescription",
			map[string]string{"commandDesc": info.Description}),
		Color: h.Color,
	}
	if len(info.Aliases) > 0 {
		embed.AddField("Aliases", quoteAll(info.Aliases), false)
	}
	if g, ok := Root(target).(*Group); ok {
		var subs []string
		for _, s := range g.Commands() {
			subs = append(subs, s.Info().Name)
		}
		embed.AddField("Subcommands", quoteAll(subs), false)
	}
	_, err := c.ReplyEmbed(ctx, embed)
	return err
}

func (h *Help) overview(c *Context) *chat.Embed {
	botName := "bot"
	if c.Self != nil {
		botName = c.Self.Username
	}
	embed := &chat.Embed{
		Title: c.TranslateOr("Help - "+botName, "helpCommandTitle",
			map[string]string{"botName": botName}),
		Description: c.TranslateOr("To get more information on a specific command, do "+c.Prefix+"help <Command>",
			"helpCommandDescription", map[string]string{"prefix": c.Prefix}),
		Color: h.Color,
	}

	categories, byCategory := c.dispatcher.registry.Categories()
	for _, cat := range categories {
		var names []string
		for _, cmd := range byCategory[cat] {
			names = append(names, cmd.Info().Name)
		}
		embed.AddField(cat, quoteAll(names), false)
	}
	return embed
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "`" + s + "`"
	}
	return strings.Join(quoted, " ")
}
