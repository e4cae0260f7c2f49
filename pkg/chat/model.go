// Package chat is the platform-neutral view of a chat service that the command
// and interaction layers consume. Front-ends (Discord, console) translate their
// native payloads into these types and implement Client and EventSource.
package chat

import (
	"fmt"
	"time"
)

// User is an account on the chat platform.
type User struct {
	ID       string
	Username string
	Bot      bool
}

// Tag returns a printable handle for the user.
func (u *User) Tag() string {
	if u == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s (%s)", u.Username, u.ID)
}

// Mention returns the platform mention markup for the user.
func (u *User) Mention() string {
	return "<@" + u.ID + ">"
}

// Member is a user inside a guild. Permissions are resolved for the channel
// the member was observed in, not guild-wide.
type Member struct {
	User        *User
	Nick        string
	Permissions Permissions
}

// Guild is a server/workspace. Self is the bot's own membership, with its
// permissions resolved for the channel of the message that carried the guild.
type Guild struct {
	ID      string
	Name    string
	OwnerID string
	Self    *Member
}

// Channel is where messages are posted.
type Channel struct {
	ID      string
	Name    string
	GuildID string
}

// DM reports whether the channel is outside of any guild.
func (c *Channel) DM() bool { return c.GuildID == "" }

// Message is an immutable snapshot of a chat message.
type Message struct {
	ID        string
	Content   string
	Author    *User
	Member    *Member
	Guild     *Guild
	Channel   *Channel
	CreatedAt time.Time
}

// FromGuild reports whether the message was posted in a guild channel.
func (m *Message) FromGuild() bool { return m.Guild != nil }

// ChannelID is a nil-safe shortcut.
func (m *Message) ChannelID() string {
	if m.Channel == nil {
		return ""
	}
	return m.Channel.ID
}

// GuildID returns "" outside of guilds.
func (m *Message) GuildID() string {
	if m.Guild == nil {
		return ""
	}
	return m.Guild.ID
}

// Embed is a rich message body.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	Footer      string
}

// EmbedField is one name/value block of an Embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// AddField appends a field and returns the embed for chaining.
func (e *Embed) AddField(name, value string, inline bool) *Embed {
	e.Fields = append(e.Fields, EmbedField{Name: name, Value: value, Inline: inline})
	return e
}
