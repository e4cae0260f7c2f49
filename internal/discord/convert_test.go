package discord

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/flowbot/pkg/chat"
)

type fakeResolver struct {
	self     *discordgo.User
	channels map[string]*discordgo.Channel
	guilds   map[string]*discordgo.Guild
	perms    map[string]int64
}

var errMissing = errors.New("missing")

func (f *fakeResolver) SelfUser() *discordgo.User { return f.self }

func (f *fakeResolver) Channel(id string) (*discordgo.Channel, error) {
	if ch, ok := f.channels[id]; ok {
		return ch, nil
	}
	return nil, errMissing
}

func (f *fakeResolver) Guild(id string) (*discordgo.Guild, error) {
	if g, ok := f.guilds[id]; ok {
		return g, nil
	}
	return nil, errMissing
}

func (f *fakeResolver) Permissions(userID, channelID string) (int64, error) {
	if p, ok := f.perms[userID+"/"+channelID]; ok {
		return p, nil
	}
	return 0, errMissing
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		self:     &discordgo.User{ID: "bot", Username: "flowbot", Bot: true},
		channels: map[string]*discordgo.Channel{"c1": {ID: "c1", Name: "general", GuildID: "g1"}},
		guilds:   map[string]*discordgo.Guild{"g1": {ID: "g1", Name: "Guild", OwnerID: "owner"}},
		perms: map[string]int64{
			"u1/c1":  discordgo.PermissionSendMessages,
			"bot/c1": discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks,
		},
	}
}

func TestToMessage_Guild(t *testing.T) {
	now := time.Now()
	m := &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   "!ping",
		Timestamp: now,
		Author:    &discordgo.User{ID: "u1", Username: "alice"},
		Member:    &discordgo.Member{Nick: "Al"},
	}

	msg := toMessage(newFakeResolver(), m)
	require.True(t, msg.FromGuild())
	assert.Equal(t, "g1", msg.GuildID())
	assert.Equal(t, "general", msg.Channel.Name)
	assert.Equal(t, "owner", msg.Guild.OwnerID)
	assert.Equal(t, now, msg.CreatedAt)

	require.NotNil(t, msg.Member)
	assert.Equal(t, "Al", msg.Member.Nick)
	assert.Equal(t, chat.PermissionSendMessages, msg.Member.Permissions)

	require.NotNil(t, msg.Guild.Self)
	assert.Equal(t, "bot", msg.Guild.Self.User.ID)
	assert.True(t, msg.Guild.Self.Permissions.Has(chat.PermissionEmbedLinks))
}

func TestToMessage_DirectMessage(t *testing.T) {
	r := newFakeResolver()
	r.channels["dm"] = &discordgo.Channel{ID: "dm", Type: discordgo.ChannelTypeDM}
	msg := toMessage(r, &discordgo.Message{ID: "m2", ChannelID: "dm", Author: &discordgo.User{ID: "u1"}})

	assert.False(t, msg.FromGuild())
	assert.Nil(t, msg.Member)
	assert.True(t, msg.Channel.DM())
}

func TestToMessage_LookupFailuresDenyPermissions(t *testing.T) {
	r := newFakeResolver()
	r.perms = nil
	msg := toMessage(r, &discordgo.Message{ID: "m3", ChannelID: "c9", GuildID: "g1", Author: &discordgo.User{ID: "u1"}})

	require.True(t, msg.FromGuild())
	assert.Equal(t, chat.PermissionNone, msg.Member.Permissions)
	assert.Equal(t, chat.PermissionNone, msg.Guild.Self.Permissions)
}

func TestToReaction(t *testing.T) {
	r := toReaction(&discordgo.MessageReaction{
		UserID: "u1", MessageID: "m1", ChannelID: "c1", GuildID: "g1",
		Emoji: discordgo.Emoji{Name: "1️⃣"},
	})
	assert.Equal(t, "1️⃣", r.Emoji)
	assert.Equal(t, "m1", r.MessageID)

	custom := toReaction(&discordgo.MessageReaction{Emoji: discordgo.Emoji{ID: "42", Name: "party"}})
	assert.Equal(t, "party:42", custom.Emoji)
}

func TestToEmbed(t *testing.T) {
	e := (&chat.Embed{Title: "Help", Description: "d", Color: 1, Footer: "f"}).AddField("a", "b", true)
	out := toEmbed(e)
	assert.Equal(t, "Help", out.Title)
	require.Len(t, out.Fields, 1)
	assert.True(t, out.Fields[0].Inline)
	require.NotNil(t, out.Footer)
	assert.Equal(t, "f", out.Footer.Text)
}
