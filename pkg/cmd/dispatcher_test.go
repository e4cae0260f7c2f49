package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/chat/chattest"
)

func TestNewDispatcher_RequiresClient(t *testing.T) {
	_, err := NewDispatcher(Options{})
	assert.Error(t, err)
}

func TestDispatch_PrefixMissDoesNothing(t *testing.T) {
	f := newFixture(t, nil)
	c := newRecorder("test")
	f.d.Register(c)

	require.NoError(t, f.dispatch(guildMsg("y!test")))
	require.NoError(t, f.dispatch(guildMsg("test x!")))
	assert.Empty(t, c.Calls())
}

func TestDispatch_UnknownCommandDoesNothing(t *testing.T) {
	f := newFixture(t, nil)
	c := newRecorder("test")
	f.d.Register(c)

	require.NoError(t, f.dispatch(guildMsg("x!nope a b")))
	require.NoError(t, f.dispatch(guildMsg("x!")))
	assert.Empty(t, c.Calls())
}

func TestDispatch_Arguments(t *testing.T) {
	f := newFixture(t, nil)
	c := newRecorder("test")
	f.d.Register(c)

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "several args", content: "x!test a b c d", want: []string{"a", "b", "c", "d"}},
		{name: "no args", content: "x!test", want: []string{}},
		{name: "space after prefix", content: "x!   test  a", want: []string{"a"}},
		{name: "extra whitespace", content: "x!test \t a \n b  ", want: []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, f.dispatch(guildMsg(tt.content)))
			calls := c.Calls()
			require.NotEmpty(t, calls)
			got := calls[len(calls)-1]
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDispatch_IgnoresBotsAndSelf(t *testing.T) {
	f := newFixture(t, nil)
	c := newRecorder("test")
	f.d.Register(c)

	fromBot := guildMsg("x!test")
	fromBot.Author = &chat.User{ID: "other-bot", Bot: true}
	require.NoError(t, f.dispatch(fromBot))

	fromSelf := guildMsg("x!test")
	fromSelf.Author = &chat.User{ID: chattest.BotID}
	require.NoError(t, f.dispatch(fromSelf))

	assert.Empty(t, c.Calls())
}

func TestDispatch_GuildOnlyFromDM(t *testing.T) {
	f := newFixture(t, nil)
	c := newRecorder("test")
	f.d.Register(c)

	err := f.dispatch(chattest.DirectMessage("x!test"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotInGuild)
	assert.Empty(t, c.Calls())

	dm := newRecorder("dm", AllowDM())
	f.d.Register(dm)
	require.NoError(t, f.dispatch(chattest.DirectMessage("x!dm")))
	assert.Len(t, dm.Calls(), 1)
}

func TestDispatch_OwnerOnly(t *testing.T) {
	f := newFixture(t, nil)
	c := newRecorder("test", OwnerOnly())
	f.d.Register(c)

	err := f.dispatch(guildMsg("x!test"))
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Empty(t, c.Calls())

	owned := newFixture(t, func(o *Options) { o.OwnerIDs = []string{chattest.UserID} })
	c2 := newRecorder("test", OwnerOnly())
	owned.d.Register(c2)
	require.NoError(t, owned.dispatch(guildMsg("x!test")))
	assert.Len(t, c2.Calls(), 1)
}

func TestDispatch_UserPermissions(t *testing.T) {
	f := newFixture(t, nil)
	c := newRecorder("test", UserPermissions(chat.PermissionManageGuild))
	f.d.Register(c)

	member := chat.PermissionSendMessages | chat.PermissionAddReactions
	err := f.dispatch(chattest.GuildMessage("x!test", member, allPerms))

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, InsufficientUserPermissions, cerr.Kind)
	assert.Equal(t, chat.PermissionManageGuild, cerr.Required)
	assert.Equal(t, member, cerr.Actual)
	assert.Equal(t, chat.PermissionManageGuild, cerr.Missing())
	assert.Same(t, c, Root(cerr.Command))
	assert.Empty(t, c.Calls())
}

func TestDispatch_BotPermissions(t *testing.T) {
	f := newFixture(t, nil)
	c := newRecorder("test", BotPermissions(chat.PermissionManageMessages))
	f.d.Register(c)

	self := chat.PermissionSendMessages
	err := f.dispatch(chattest.GuildMessage("x!test", allPerms, self))

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, InsufficientBotPermissions, cerr.Kind)
	assert.Equal(t, chat.PermissionManageMessages, cerr.Required)
	assert.Equal(t, self, cerr.Actual)
	assert.Empty(t, c.Calls())
}

func TestVerify_Order(t *testing.T) {
	c := newRecorder("test", OwnerOnly(), UserPermissions(chat.PermissionAdministrator))

	// not in guild wins over everything
	assert.ErrorIs(t, Verify(chattest.DirectMessage("x"), c, nil), ErrNotInGuild)
	// then owner
	assert.ErrorIs(t, Verify(chattest.GuildMessage("x", 0, 0), c, nil), ErrNotOwner)
	// then user permissions
	assert.ErrorIs(t, Verify(chattest.GuildMessage("x", 0, 0), c, []string{chattest.UserID}), ErrInsufficientUserPermissions)
	// then bot permissions
	assert.ErrorIs(t, Verify(chattest.GuildMessage("x", allPerms, 0), c, []string{chattest.UserID}), ErrInsufficientBotPermissions)
	assert.NoError(t, Verify(chattest.GuildMessage("x", allPerms, allPerms), c, []string{chattest.UserID}))
}

func TestVerify_MissingMemberSnapshot(t *testing.T) {
	c := newRecorder("test", UserPermissions(chat.PermissionSendMessages))
	msg := guildMsg("x")
	msg.Member = nil
	assert.ErrorIs(t, Verify(msg, c, nil), ErrInsufficientUserPermissions)
}

func TestDispatch_GuildPrefix(t *testing.T) {
	loader := new(MockSettingsLoader)
	loader.On("Load", mock.Anything, mock.Anything).Return(BasicSettings{Prefix: "z!"}, nil)

	f := newFixture(t, func(o *Options) { o.Settings = loader })
	c := newRecorder("test")
	f.d.Register(c)

	require.NoError(t, f.dispatch(guildMsg("z!test a")))
	require.NoError(t, f.dispatch(guildMsg("x!test b")))
	assert.Equal(t, [][]string{{"a"}, {"b"}}, c.Calls())
	assert.Equal(t, "z!", c.LastContext().Settings().CustomPrefix())
	loader.AssertNumberOfCalls(t, "Load", 2)
}

func TestDispatch_SettingsNotLoadedOutsideGuilds(t *testing.T) {
	loader := new(MockSettingsLoader)
	f := newFixture(t, func(o *Options) { o.Settings = loader })
	c := newRecorder("test", AllowDM())
	f.d.Register(c)

	require.NoError(t, f.dispatch(chattest.DirectMessage("x!test")))
	assert.Len(t, c.Calls(), 1)
	assert.Nil(t, c.LastContext().Settings())
	loader.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func TestDispatch_SettingsError(t *testing.T) {
	boom := errors.New("storage down")
	loader := new(MockSettingsLoader)
	loader.On("Load", mock.Anything, mock.Anything).Return(nil, boom)

	f := newFixture(t, func(o *Options) { o.Settings = loader })
	c := newRecorder("test")
	f.d.Register(c)

	err := f.dispatch(guildMsg("x!test"))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, c.Calls())
}

func TestDispatch_PrefixOrder(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Prefixes = []string{"!", "!!"} })
	short := newRecorder("ping")
	bang := newRecorder("!ping")
	f.d.Register(short, bang)

	// "!" is tried first, leaving "!ping" as the command name
	require.NoError(t, f.dispatch(guildMsg("!!ping")))
	assert.Empty(t, short.Calls())
	assert.Len(t, bang.Calls(), 1)
	assert.Equal(t, "!", bang.LastContext().Prefix)
}

func TestDispatch_PrefixLoaders(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.Prefixes = nil
		o.PrefixLoaders = []PrefixLoader{
			func(context.Context, *chat.Message) string { return "" },
			MentionPrefix(func() *chat.User { return &chat.User{ID: chattest.BotID} }),
		}
	})
	c := newRecorder("test")
	f.d.Register(c)
	f.d.AddPrefix("?")

	require.NoError(t, f.dispatch(guildMsg("<@bot> test 1")))
	require.NoError(t, f.dispatch(guildMsg("<@!bot>test 2")))
	require.NoError(t, f.dispatch(guildMsg("?test 3")))
	require.NoError(t, f.dispatch(guildMsg("test 4")))
	assert.Equal(t, [][]string{{"1"}, {"2"}, {"3"}}, c.Calls())
	assert.Equal(t, []string{"?"}, f.d.Prefixes())
}

func TestDispatch_AliasesAndCollisions(t *testing.T) {
	f := newFixture(t, nil)
	first := newRecorder("first", Aliases("f", "shared"))
	second := newRecorder("second", Aliases("shared", "first"))
	f.d.Register(first, second)

	require.NoError(t, f.dispatch(guildMsg("x!f")))
	require.NoError(t, f.dispatch(guildMsg("x!shared")))
	// names win over aliases
	require.NoError(t, f.dispatch(guildMsg("x!first")))

	assert.Len(t, first.Calls(), 2)
	assert.Len(t, second.Calls(), 1)

	replacement := newRecorder("first")
	f.d.Register(replacement)
	require.NoError(t, f.dispatch(guildMsg("x!first")))
	assert.Len(t, replacement.Calls(), 1)
	assert.Len(t, first.Calls(), 2)
}

func TestDispatch_CommandErrorPassesThrough(t *testing.T) {
	f := newFixture(t, nil)
	c := newRecorder("test")
	c.err = errors.New("failed")
	f.d.Register(c)
	assert.Equal(t, c.err, f.dispatch(guildMsg("x!test")))
}

func TestDispatch_ContextSnapshot(t *testing.T) {
	f := newFixture(t, nil)
	c := newRecorder("test")
	f.d.Register(c)

	msg := guildMsg("x!test arg")
	ev := &chat.MessageCreate{Message: msg}
	require.NoError(t, f.d.Dispatch(context.Background(), msg, ev))

	ctx := c.LastContext()
	require.NotNil(t, ctx)
	assert.Same(t, msg, ctx.Message)
	assert.Same(t, ev, ctx.Event)
	assert.Equal(t, "x!", ctx.Prefix)
	assert.Equal(t, chattest.UserID, ctx.Author.ID)
	assert.Equal(t, chattest.GuildID, ctx.Guild.ID)
	assert.Equal(t, chattest.ChannelID, ctx.Channel.ID)
	assert.Equal(t, chattest.BotID, ctx.Self.ID)
	assert.Same(t, msg.Guild.Self, ctx.SelfMember)
	assert.Same(t, f.d, ctx.Dispatcher())
	assert.Same(t, c, Root(ctx.Command))
	assert.Equal(t, "arg", ctx.Arg(0))
	assert.Equal(t, "", ctx.Arg(5))
}

func TestApply_FirstMiddlewareIsOutermost(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next Command) Command {
			return Wrap(next, func(ctx context.Context, c *Context) error {
				order = append(order, name)
				return next.Execute(ctx, c)
			})
		}
	}

	f := newFixture(t, func(o *Options) { o.Middlewares = []Middleware{mw("outer"), mw("inner")} })
	c := newRecorder("test", Aliases("t"))
	f.d.Register(c)

	require.NoError(t, f.dispatch(guildMsg("x!t")))
	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Len(t, c.Calls(), 1)

	got, ok := f.d.Registry().Get("test")
	require.True(t, ok)
	assert.Equal(t, "test", got.Info().Name)
	assert.Same(t, c, Root(got))
}

func TestRegistry_Categories(t *testing.T) {
	r := NewRegistry()
	a := &recorder{Base: NewBase("a", "util")}
	b := &recorder{Base: NewBase("b", "admin")}
	h := &recorder{Base: NewBase("h", "admin", Hidden())}
	r.Register(b, a, h)

	names, by := r.Categories()
	assert.Equal(t, []string{"admin", "util"}, names)
	assert.Len(t, by["admin"], 1)
	assert.Len(t, r.All(), 3)
	assert.Equal(t, "a", r.All()[0].Info().Name)
}

func TestNewBase_Defaults(t *testing.T) {
	b := NewBase("x", "cat")
	info := b.Info()
	assert.True(t, info.GuildOnly)
	assert.False(t, info.OwnerOnly)
	assert.False(t, info.Hidden)
	assert.Equal(t, chat.PermissionSendMessages, info.BotPermissions)
	assert.Equal(t, chat.PermissionNone, info.UserPermissions)
}
