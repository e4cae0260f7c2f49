// Package chattest provides a recording chat.Client and message builders for
// tests.
package chattest

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/keshon/flowbot/pkg/chat"
)

// Fixed identifiers used by the builders.
const (
	GuildID   = "g1"
	ChannelID = "c1"
	UserID    = "u1"
	BotID     = "bot"
)

// Sent is one outbound message.
type Sent struct {
	ChannelID string
	Content   string
	Embed     *chat.Embed
	Message   *chat.Message
}

// Reaction is one reaction added by the client.
type Reaction struct {
	MessageID string
	Emoji     string
}

// Client records every call. Set Err to make all calls fail.
type Client struct {
	mu        sync.Mutex
	self      *chat.User
	seq       int
	sent      []Sent
	edits     []Sent
	deleted   []string
	reactions []Reaction

	Err error
}

var _ chat.Client = (*Client)(nil)

// NewClient returns a client whose own user is a bot named "flowbot".
func NewClient() *Client {
	return &Client{self: &chat.User{ID: BotID, Username: "flowbot", Bot: true}}
}

func (c *Client) Self() *chat.User { return c.self }

func (c *Client) SendMessage(_ context.Context, channelID, content string) (*chat.Message, error) {
	return c.record(channelID, content, nil)
}

func (c *Client) SendEmbed(_ context.Context, channelID string, embed *chat.Embed) (*chat.Message, error) {
	return c.record(channelID, "", embed)
}

func (c *Client) EditMessage(_ context.Context, msg *chat.Message, content string) (*chat.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	edited := *msg
	edited.Content = content
	c.edits = append(c.edits, Sent{ChannelID: msg.ChannelID(), Content: content, Message: &edited})
	return &edited, nil
}

func (c *Client) DeleteMessage(_ context.Context, msg *chat.Message, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.deleted = append(c.deleted, msg.ID)
	return nil
}

func (c *Client) AddReaction(_ context.Context, msg *chat.Message, emoji string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.reactions = append(c.reactions, Reaction{MessageID: msg.ID, Emoji: emoji})
	return nil
}

func (c *Client) record(channelID, content string, embed *chat.Embed) (*chat.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	c.seq++
	msg := &chat.Message{
		ID:        "sent-" + strconv.Itoa(c.seq),
		Content:   content,
		Author:    c.self,
		Channel:   &chat.Channel{ID: channelID},
		CreatedAt: time.Now(),
	}
	c.sent = append(c.sent, Sent{ChannelID: channelID, Content: content, Embed: embed, Message: msg})
	return msg, nil
}

// Sent returns a copy of everything sent so far.
func (c *Client) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

// Last returns the most recent sent message.
func (c *Client) Last() (Sent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return Sent{}, false
	}
	return c.sent[len(c.sent)-1], true
}

// Contents returns the text of every sent message.
func (c *Client) Contents() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.sent))
	for _, s := range c.sent {
		out = append(out, s.Content)
	}
	return out
}

// Edits returns recorded edits.
func (c *Client) Edits() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.edits...)
}

// Deleted returns the ids of deleted messages.
func (c *Client) Deleted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deleted...)
}

// Reactions returns recorded reactions.
func (c *Client) Reactions() []Reaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Reaction(nil), c.reactions...)
}

var msgSeq struct {
	sync.Mutex
	n int
}

func nextID() string {
	msgSeq.Lock()
	defer msgSeq.Unlock()
	msgSeq.n++
	return "m" + strconv.Itoa(msgSeq.n)
}

// GuildMessage builds a message by UserID in ChannelID of GuildID. member and
// self are the channel permissions of the author and of the bot.
func GuildMessage(content string, member, self chat.Permissions) *chat.Message {
	author := &chat.User{ID: UserID, Username: "alice"}
	return &chat.Message{
		ID:      nextID(),
		Content: content,
		Author:  author,
		Member:  &chat.Member{User: author, Permissions: member},
		Guild: &chat.Guild{
			ID:   GuildID,
			Name: "test guild",
			Self: &chat.Member{User: &chat.User{ID: BotID, Username: "flowbot", Bot: true}, Permissions: self},
		},
		Channel:   &chat.Channel{ID: ChannelID, Name: "general", GuildID: GuildID},
		CreatedAt: time.Now(),
	}
}

// DirectMessage builds a message outside of any guild.
func DirectMessage(content string) *chat.Message {
	return &chat.Message{
		ID:        nextID(),
		Content:   content,
		Author:    &chat.User{ID: UserID, Username: "alice"},
		Channel:   &chat.Channel{ID: "dm-" + UserID},
		CreatedAt: time.Now(),
	}
}

// Reply builds a follow-up message by the same author in the same channel.
func Reply(to *chat.Message, content string) *chat.MessageCreate {
	m := *to
	m.ID = nextID()
	m.Content = content
	m.CreatedAt = time.Now()
	return &chat.MessageCreate{Message: &m}
}
