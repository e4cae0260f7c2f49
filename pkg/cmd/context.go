package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/i18n"
	"github.com/keshon/flowbot/pkg/interaction"
)

// ErrNoEvents is returned by helpers that need an event source when the
// dispatcher was built without one.
var ErrNoEvents = errors.New("cmd: no event source configured")

// Context is built once per invocation.
type Context struct {
	Message *chat.Message
	Command Command
	Args    []string
	Prefix  string
	// Event is the event that carried Message. It may be nil.
	Event chat.Event

	Author     *chat.User
	Member     *chat.Member
	Guild      *chat.Guild
	Channel    *chat.Channel
	Self       *chat.User
	SelfMember *chat.Member

	settings   Settings
	dispatcher *Dispatcher
}

// NewContext snapshots msg for an invocation of c.
func NewContext(d *Dispatcher, msg *chat.Message, c Command, args []string, prefix string, ev chat.Event, settings Settings) *Context {
	if args == nil {
		args = []string{}
	}
	ctx := &Context{
		Message:    msg,
		Command:    c,
		Args:       args,
		Prefix:     prefix,
		Event:      ev,
		Author:     msg.Author,
		Member:     msg.Member,
		Guild:      msg.Guild,
		Channel:    msg.Channel,
		Self:       d.client.Self(),
		settings:   settings,
		dispatcher: d,
	}
	if msg.Guild != nil {
		ctx.SelfMember = msg.Guild.Self
	}
	return ctx
}

// With returns a copy pointing at another command and argument list. Groups
// use it to hand off to sub-commands.
func (c *Context) With(command Command, args []string) *Context {
	cp := *c
	cp.Command = command
	cp.Args = args
	return &cp
}

// Dispatcher returns the dispatcher that built the context.
func (c *Context) Dispatcher() *Dispatcher { return c.dispatcher }

// Client is a shortcut for the dispatcher's client.
func (c *Context) Client() chat.Client { return c.dispatcher.client }

// Settings returns the guild settings loaded for this message, or nil.
func (c *Context) Settings() Settings { return c.settings }

// Arg returns the i-th argument or "".
func (c *Context) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

func (c *Context) selfPermissions() chat.Permissions {
	if c.SelfMember == nil {
		return chat.PermissionNone
	}
	return c.SelfMember.Permissions
}

func (c *Context) requireBot(p chat.Permissions, kind ErrorKind) error {
	if c.Guild == nil {
		return nil
	}
	if actual := c.selfPermissions(); !actual.Has(p) {
		return &Error{Kind: kind, Message: c.Message, Command: c.Command, Required: p, Actual: actual}
	}
	return nil
}

// Reply posts content to the invocation channel.
func (c *Context) Reply(ctx context.Context, content string) (*chat.Message, error) {
	if err := c.requireBot(chat.PermissionSendMessages, InsufficientBotPermissions); err != nil {
		return nil, err
	}
	return c.Client().SendMessage(ctx, c.Message.ChannelID(), content)
}

// Replyf formats and posts a reply.
func (c *Context) Replyf(ctx context.Context, format string, args ...any) (*chat.Message, error) {
	return c.Reply(ctx, fmt.Sprintf(format, args...))
}

// ReplyEmbed posts an embed. In guilds the bot needs to be allowed to embed
// links.
func (c *Context) ReplyEmbed(ctx context.Context, embed *chat.Embed) (*chat.Message, error) {
	if err := c.requireBot(chat.PermissionEmbedLinks, MissingEmbedPermissions); err != nil {
		return nil, err
	}
	return c.Client().SendEmbed(ctx, c.Message.ChannelID(), embed)
}

// Language picks the guild's language, then the dispatcher default.
func (c *Context) Language() (*i18n.Language, error) {
	if c.settings != nil {
		if l := c.settings.CustomLanguage(); l != nil {
			return l, nil
		}
	}
	if l := c.dispatcher.DefaultLanguage(); l != nil {
		return l, nil
	}
	return nil, &Error{Kind: NoLanguage, Message: c.Message, Command: c.Command}
}

// Translate renders key in the context's language.
func (c *Context) Translate(key string, args map[string]string) (string, error) {
	lang, err := c.Language()
	if err != nil {
		return "", err
	}
	return c.translateIn(lang, key, args)
}

func (c *Context) translateIn(lang *i18n.Language, key string, args map[string]string) (string, error) {
	out, err := lang.Translate(key, args)
	if err != nil {
		return "", &Error{Kind: UnknownTranslationKey, Message: c.Message, Command: c.Command, Key: key, Err: err}
	}
	return out, nil
}

// TranslateOr is Translate with a fallback for any failure.
func (c *Context) TranslateOr(fallback, key string, args map[string]string) string {
	out, err := c.Translate(key, args)
	if err != nil {
		return fallback
	}
	return out
}

// ReplyTranslate replies with a translated text. lang overrides the context's
// language when non-nil.
func (c *Context) ReplyTranslate(ctx context.Context, key string, args map[string]string, lang *i18n.Language) (*chat.Message, error) {
	var (
		text string
		err  error
	)
	if lang != nil {
		text, err = c.translateIn(lang, key, args)
	} else {
		text, err = c.Translate(key, args)
	}
	if err != nil {
		return nil, err
	}
	return c.Reply(ctx, text)
}

// DeleteMessage removes the invoking message when the bot may manage
// messages in the channel. Otherwise, and outside guilds, it does nothing.
func (c *Context) DeleteMessage(ctx context.Context, reason string) error {
	if c.Guild == nil || !c.selfPermissions().Has(chat.PermissionManageMessages) {
		return nil
	}
	return c.Client().DeleteMessage(ctx, c.Message, reason)
}

// Edit replaces the content of a message the bot sent.
func (c *Context) Edit(ctx context.Context, msg *chat.Message, content string) (*chat.Message, error) {
	return c.Client().EditMessage(ctx, msg, content)
}

// React adds an emoji reaction to msg.
func (c *Context) React(ctx context.Context, msg *chat.Message, emoji string) error {
	if err := c.requireBot(chat.PermissionAddReactions, InsufficientBotPermissions); err != nil {
		return err
	}
	return c.Client().AddReaction(ctx, msg, emoji)
}

// FromAuthor matches new messages by the invoking user in the invoking channel.
func (c *Context) FromAuthor(m *chat.Message) bool {
	return m.Author != nil && c.Author != nil && m.Author.ID == c.Author.ID &&
		m.ChannelID() == c.Message.ChannelID()
}

// Invokes reports whether m starts with a prefix that would dispatch it here.
// Flows use it to leave command invocations to the router.
func (c *Context) Invokes(ctx context.Context, m *chat.Message) bool {
	_, ok := MatchPrefix(m.Content, c.dispatcher.prefixCandidates(ctx, m, c.settings))
	return ok
}

// WaitForMessage blocks until a new message satisfies pred, timeout elapses
// or ctx ends. A nil pred means FromAuthor. Running out of time yields a
// Timeout error.
func (c *Context) WaitForMessage(ctx context.Context, timeout time.Duration, pred func(*chat.Message) bool) (*chat.Message, error) {
	if c.dispatcher.events == nil {
		return nil, ErrNoEvents
	}
	if pred == nil {
		pred = c.FromAuthor
	}
	events, unsubscribe := c.dispatcher.events.Subscribe(chat.DefaultBuffer)
	defer unsubscribe()

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-expired:
			return nil, &Error{Kind: Timeout, Message: c.Message, Command: c.Command}
		case ev, ok := <-events:
			if !ok {
				return nil, interaction.ErrSourceClosed
			}
			if m, ok := ev.(*chat.MessageCreate); ok && m.Message != nil && pred(m.Message) {
				return m.Message, nil
			}
		}
	}
}

// WaitForMessages streams new messages satisfying pred until ctx ends. A nil
// pred means FromAuthor. The channel is closed when the stream stops.
func (c *Context) WaitForMessages(ctx context.Context, pred func(*chat.Message) bool) (<-chan *chat.Message, error) {
	if c.dispatcher.events == nil {
		return nil, ErrNoEvents
	}
	if pred == nil {
		pred = c.FromAuthor
	}
	events, unsubscribe := c.dispatcher.events.Subscribe(chat.DefaultBuffer)
	out := make(chan *chat.Message)
	go func() {
		defer close(out)
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				m, isMsg := ev.(*chat.MessageCreate)
				if !isMsg || m.Message == nil || !pred(m.Message) {
					continue
				}
				select {
				case out <- m.Message:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// FlowKey identifies the caller's flow slot: one per guild, channel and user.
func (c *Context) FlowKey() string {
	return FlowKey(c.Message.GuildID(), c.Message.ChannelID(), c.Author.ID)
}

// FlowKey builds the job name used for a user's flow in a channel.
func FlowKey(guildID, channelID, userID string) string {
	if guildID == "" {
		guildID = "dm"
	}
	return guildID + ":" + channelID + ":" + userID
}

// RunFlow runs flow from root under the caller's flow slot and blocks until
// it finishes. A second flow in the same slot fails with jobmgr.ErrJobRunning.
// The invoking event is the root event, so an executable root step runs
// immediately.
func (c *Context) RunFlow(ctx context.Context, flow *interaction.Flow, root interaction.StepID) error {
	ex := c.dispatcher.executor
	if ex == nil {
		return ErrNoEvents
	}
	rootEvent := c.Event
	if rootEvent == nil {
		rootEvent = &chat.MessageCreate{Message: c.Message}
	}
	return c.dispatcher.flows.Run(ctx, c.FlowKey(), func(ctx context.Context) error {
		return ex.Run(ctx, flow, root, rootEvent)
	})
}
