package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/chat/chattest"
	"github.com/keshon/flowbot/pkg/i18n"
	"github.com/keshon/flowbot/pkg/interaction"
	"github.com/keshon/flowbot/pkg/jobmgr"
)

func contextFor(f *fixture, msg *chat.Message, settings Settings) *Context {
	c := newRecorder("test")
	return NewContext(f.d, msg, c, nil, "x!", &chat.MessageCreate{Message: msg}, settings)
}

func TestContext_ReplyNeedsSendMessages(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	c := contextFor(f, chattest.GuildMessage("x!test", allPerms, chat.PermissionViewChannel), nil)
	_, err := c.Reply(ctx, "hi")
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, InsufficientBotPermissions, cerr.Kind)
	assert.Equal(t, chat.PermissionSendMessages, cerr.Required)
	assert.Empty(t, f.client.Sent())

	c = contextFor(f, guildMsg("x!test"), nil)
	sent, err := c.Replyf(ctx, "hi %d", 2)
	require.NoError(t, err)
	assert.Equal(t, "hi 2", sent.Content)
	assert.Equal(t, []string{"hi 2"}, f.client.Contents())

	// no guild, no permission model
	c = contextFor(f, chattest.DirectMessage("x!test"), nil)
	_, err = c.Reply(ctx, "dm")
	require.NoError(t, err)
}

func TestContext_ReplyEmbedNeedsEmbedLinks(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	c := contextFor(f, chattest.GuildMessage("x!test", allPerms, chat.PermissionSendMessages), nil)
	_, err := c.ReplyEmbed(ctx, &chat.Embed{Title: "t"})
	assert.ErrorIs(t, err, ErrMissingEmbedPermissions)

	c = contextFor(f, guildMsg("x!test"), nil)
	_, err = c.ReplyEmbed(ctx, &chat.Embed{Title: "t"})
	require.NoError(t, err)
	last, ok := f.client.Last()
	require.True(t, ok)
	assert.Equal(t, "t", last.Embed.Title)
}

func TestContext_DeleteMessage(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	noManage := chattest.GuildMessage("x!test", allPerms, chat.PermissionSendMessages)
	require.NoError(t, contextFor(f, noManage, nil).DeleteMessage(ctx, "cleanup"))
	require.NoError(t, contextFor(f, chattest.DirectMessage("x!test"), nil).DeleteMessage(ctx, "cleanup"))
	assert.Empty(t, f.client.Deleted())

	msg := guildMsg("x!test")
	require.NoError(t, contextFor(f, msg, nil).DeleteMessage(ctx, "cleanup"))
	assert.Equal(t, []string{msg.ID}, f.client.Deleted())
}

func TestContext_EditAndReact(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c := contextFor(f, guildMsg("x!test"), nil)

	sent, err := c.Reply(ctx, "one")
	require.NoError(t, err)
	edited, err := c.Edit(ctx, sent, "two")
	require.NoError(t, err)
	assert.Equal(t, "two", edited.Content)

	require.NoError(t, c.React(ctx, sent, "👍"))
	assert.Equal(t, []chattest.Reaction{{MessageID: sent.ID, Emoji: "👍"}}, f.client.Reactions())

	noReact := contextFor(f, chattest.GuildMessage("x!test", allPerms, chat.PermissionSendMessages), nil)
	assert.ErrorIs(t, noReact.React(ctx, sent, "👍"), ErrInsufficientBotPermissions)
}

func TestContext_Invokes(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.PrefixLoaders = []PrefixLoader{MentionPrefix(func() *chat.User { return &chat.User{ID: chattest.BotID} })}
	})
	ctx := context.Background()
	c := contextFor(f, guildMsg("x!test"), BasicSettings{Prefix: "$$"})

	assert.True(t, c.Invokes(ctx, guildMsg("x!cancel")))
	assert.True(t, c.Invokes(ctx, guildMsg("$$help")))
	assert.True(t, c.Invokes(ctx, guildMsg("<@bot> ping")))
	assert.False(t, c.Invokes(ctx, guildMsg("?!")))
	assert.False(t, c.Invokes(ctx, guildMsg("")))
}

func TestContext_Language(t *testing.T) {
	en := i18n.NewLanguage("en", map[string]string{"greet": "Hello ${name}"})
	ru := i18n.NewLanguage("ru", map[string]string{"greet": "Привет ${name}"})
	catalog := i18n.NewCatalog(en, ru)

	f := newFixture(t, func(o *Options) {
		o.Languages = catalog
		o.DefaultLanguage = "en"
	})
	ctx := context.Background()

	c := contextFor(f, guildMsg("x!test"), nil)
	lang, err := c.Language()
	require.NoError(t, err)
	assert.Equal(t, "en", lang.Name())

	c = contextFor(f, guildMsg("x!test"), BasicSettings{Language: ru})
	_, err = c.ReplyTranslate(ctx, "greet", map[string]string{"name": "Ada"}, nil)
	require.NoError(t, err)
	_, err = c.ReplyTranslate(ctx, "greet", map[string]string{"name": "Ada"}, en)
	require.NoError(t, err)
	assert.Equal(t, []string{"Привет Ada", "Hello Ada"}, f.client.Contents())

	_, err = c.ReplyTranslate(ctx, "missing", nil, nil)
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, UnknownTranslationKey, cerr.Kind)
	assert.Equal(t, "missing", cerr.Key)
	assert.ErrorIs(t, err, i18n.ErrUnknownKey)

	assert.Equal(t, "fallback", c.TranslateOr("fallback", "missing", nil))
}

func TestContext_NoLanguage(t *testing.T) {
	f := newFixture(t, nil)
	c := contextFor(f, guildMsg("x!test"), nil)
	_, err := c.Translate("k", nil)
	assert.ErrorIs(t, err, ErrNoLanguage)
}

func TestContext_WaitForMessage(t *testing.T) {
	f := newFixture(t, nil)
	msg := guildMsg("x!test")
	c := contextFor(f, msg, nil)

	got := make(chan *chat.Message, 1)
	errc := make(chan error, 1)
	go func() {
		m, err := c.WaitForMessage(context.Background(), time.Second, nil)
		got <- m
		errc <- err
	}()
	require.Eventually(t, func() bool { return f.hub.Subscribers() == 1 }, time.Second, time.Millisecond)

	other := chattest.Reply(msg, "not me")
	other.Author = &chat.User{ID: "u2"}
	f.hub.Publish(other)
	f.hub.Publish(chattest.Reply(msg, "yes"))

	require.NoError(t, <-errc)
	assert.Equal(t, "yes", (<-got).Content)
}

func TestContext_WaitForMessageTimeout(t *testing.T) {
	f := newFixture(t, nil)
	c := contextFor(f, guildMsg("x!test"), nil)

	_, err := c.WaitForMessage(context.Background(), 20*time.Millisecond, nil)
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, Timeout, cerr.Kind)
	assert.Equal(t, 0, f.hub.Subscribers())
}

func TestContext_WaitForMessages(t *testing.T) {
	f := newFixture(t, nil)
	msg := guildMsg("x!test")
	c := contextFor(f, msg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := c.WaitForMessages(ctx, func(m *chat.Message) bool { return m.Content != "skip" })
	require.NoError(t, err)

	f.hub.Publish(chattest.Reply(msg, "a"))
	f.hub.Publish(chattest.Reply(msg, "skip"))
	f.hub.Publish(chattest.Reply(msg, "b"))

	assert.Equal(t, "a", (<-stream).Content)
	assert.Equal(t, "b", (<-stream).Content)
	cancel()
	for range stream {
	}
	require.Eventually(t, func() bool { return f.hub.Subscribers() == 0 }, time.Second, time.Millisecond)
}

func TestContext_NoEventSource(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Events = nil })
	c := contextFor(f, guildMsg("x!test"), nil)
	_, err := c.WaitForMessage(context.Background(), time.Second, nil)
	assert.ErrorIs(t, err, ErrNoEvents)
	assert.ErrorIs(t, c.RunFlow(context.Background(), interaction.NewFlow(), interaction.End), ErrNoEvents)
}

func TestContext_RunFlowOnePerSlot(t *testing.T) {
	f := newFixture(t, nil)
	msg := guildMsg("x!test")
	c := contextFor(f, msg, nil)

	flow := interaction.NewFlow()
	greeted := make(chan struct{})
	wait := flow.Step("wait")
	start := flow.Executable("start", func(context.Context, chat.Event) (interaction.StepID, error) {
		close(greeted)
		return wait.ID(), nil
	})
	wait.OnEnd(interaction.ContentIs("stop"), 0)

	done := make(chan error, 1)
	go func() { done <- c.RunFlow(context.Background(), flow, start.ID()) }()
	<-greeted
	require.Eventually(t, func() bool { return f.d.Flows().Running(c.FlowKey()) }, time.Second, time.Millisecond)

	assert.ErrorIs(t, c.RunFlow(context.Background(), flow, start.ID()), jobmgr.ErrJobRunning)

	f.hub.Publish(chattest.Reply(msg, "stop"))
	require.NoError(t, <-done)
	assert.False(t, f.d.Flows().Running(c.FlowKey()))
	assert.Equal(t, "g1:c1:u1", c.FlowKey())
	assert.Equal(t, "dm:c:u", FlowKey("", "c", "u"))
}
