package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/keshon/flowbot/internal/storage"
	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/cmd"
	"github.com/keshon/flowbot/pkg/interaction"
	"github.com/keshon/flowbot/pkg/jobmgr"
)

const (
	emojiOne   = "1️⃣"
	emojiTwo   = "2️⃣"
	emojiThree = "3️⃣"
)

// NewSetup returns the interactive settings menu. "setup graph [step]" prints
// the menu's step graph in DOT, rooted at start or at the named step.
func NewSetup() *cmd.Group {
	return cmd.NewGroup(
		cmd.NewBase("setup", categorySettings,
			cmd.UserPermissions(chat.PermissionManageGuild),
			cmd.BotPermissions(chat.PermissionSendMessages|chat.PermissionAddReactions),
			cmd.Description("Interactive settings menu"),
		),
		[]cmd.Command{
			cmd.New(cmd.NewBase("graph", categorySettings,
				cmd.Aliases("dot"),
				cmd.Description("Print the menu as a DOT graph"),
			), setupGraph),
		},
		cmd.New(cmd.NewBase("menu", categorySettings,
			cmd.UserPermissions(chat.PermissionManageGuild),
			cmd.BotPermissions(chat.PermissionSendMessages|chat.PermissionAddReactions),
		), runSetup),
	)
}

type setupMenu struct {
	flow  *interaction.Flow
	start *interaction.Step
}

// newSetupMenu builds one run of the menu. The flow is rebuilt per run so
// guards can see the id of the menu message that run posted.
func newSetupMenu(c *cmd.Context) *setupMenu {
	var menu *chat.Message
	author := c.Author.ID
	channel := c.Message.ChannelID()

	choice := func(word, emoji string) interaction.Guard {
		byMessage := interaction.All(interaction.MessageFrom(channel, author), interaction.ContentIs(word))
		return func(ctx context.Context, ev chat.Event) bool {
			if byMessage(ctx, ev) {
				return true
			}
			return menu != nil && interaction.ReactionFrom(menu.ID, author, emoji)(ctx, ev)
		}
	}
	shortEnough := func(_ context.Context, ev chat.Event) bool {
		m, ok := ev.(*chat.MessageCreate)
		return ok && len([]rune(strings.TrimSpace(m.Content))) <= storage.MaxPrefixLength
	}
	notCommand := func(ctx context.Context, ev chat.Event) bool {
		m, ok := chat.MessageOf(ev)
		return ok && !c.Invokes(ctx, m)
	}

	flow := interaction.NewFlow()
	m := &setupMenu{flow: flow}

	m.start = flow.Executable("start", func(ctx context.Context, _ chat.Event) (interaction.StepID, error) {
		msg, err := say(ctx, c, "setupMenu", nil,
			"What would you like to do?\n\n"+
				"To set a prefix, type \"prefix\" or react with %s.\n"+
				"To see the current settings, type \"settings\" or react with %s.\n"+
				"To exit this menu, type \"exit\" or react with %s.", emojiOne, emojiTwo, emojiThree)
		if err != nil {
			return interaction.None, err
		}
		menu = msg
		for _, e := range []string{emojiOne, emojiTwo, emojiThree} {
			if err := c.React(ctx, msg, e); err != nil {
				return interaction.None, err
			}
		}
		return interaction.None, nil
	})

	askPrefix := flow.Executable("ask-prefix", func(ctx context.Context, _ chat.Event) (interaction.StepID, error) {
		_, err := say(ctx, c, "setupAskPrefix", nil, "Type the new prefix to set. Can be up to %d characters.", storage.MaxPrefixLength)
		return interaction.None, err
	})

	savePrefix := flow.Executable("save-prefix", func(ctx context.Context, ev chat.Event) (interaction.StepID, error) {
		gs, err := guildSettings(c)
		if err != nil {
			return interaction.None, err
		}
		prefix := strings.TrimSpace(ev.(*chat.MessageCreate).Content)
		if err := gs.SetPrefix(prefix); err != nil {
			return interaction.None, err
		}
		if _, err := say(ctx, c, "settingsPrefixSet", map[string]string{"prefix": prefix}, "Successfully set new prefix to %s!", prefix); err != nil {
			return interaction.None, err
		}
		return m.start.ID(), nil
	})

	view := flow.Executable("view", func(ctx context.Context, _ chat.Event) (interaction.StepID, error) {
		if err := showSettings(ctx, c); err != nil {
			return interaction.None, err
		}
		return m.start.ID(), nil
	})

	m.start.On(askPrefix, choice("prefix", emojiOne), 0)
	m.start.On(view, choice("settings", emojiTwo), 0)
	m.start.OnEnd(choice("exit", emojiThree), 0)
	askPrefix.On(savePrefix, interaction.All(interaction.MessageFrom(channel, author), notCommand, shortEnough), 0)
	return m
}

func runSetup(ctx context.Context, c *cmd.Context) error {
	if _, err := guildSettings(c); err != nil {
		return err
	}
	log := c.Dispatcher().Logger().With("run", uuid.NewString(), "flow", c.FlowKey())

	if _, err := say(ctx, c, "setupWelcome", map[string]string{"user": c.Author.Tag()},
		"Hello %s!\nWelcome to the settings menu!", c.Author.Tag()); err != nil {
		return err
	}

	m := newSetupMenu(c)
	log.Debugw("setup started")
	err := c.RunFlow(ctx, m.flow, m.start.ID())
	switch {
	case errors.Is(err, jobmgr.ErrJobRunning):
		_, err = say(ctx, c, "setupAlreadyRunning", nil, "You already have a menu open here. Use cancel to close it.")
		return err
	case errors.Is(err, context.Canceled) && ctx.Err() == nil:
		log.Debugw("setup cancelled")
		_, err = say(ctx, c, "setupCancelled", nil, "Menu closed.")
		return err
	case err != nil:
		return err
	}
	log.Debugw("setup finished")
	_, err = say(ctx, c, "setupBye", nil, "Bye!")
	return err
}

func setupGraph(ctx context.Context, c *cmd.Context) error {
	m := newSetupMenu(c)
	root := m.start
	if name := c.Arg(0); name != "" {
		step, ok := m.flow.Lookup(name)
		if !ok {
			_, err := say(ctx, c, "setupNoStep", map[string]string{"step": name}, "The menu has no step %s.", name)
			return err
		}
		root = step
	}
	g, err := m.flow.Graph(root.ID())
	if err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString("```dot\n")
	if err := g.WriteDOT(&b); err != nil {
		return err
	}
	b.WriteString("```")
	_, err = c.Reply(ctx, b.String())
	return err
}
