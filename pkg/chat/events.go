package chat

import (
	"context"
	"time"
)

// EventType identifies an inbound event kind.
type EventType int

const (
	EventMessageCreate EventType = iota + 1
	EventMessageUpdate
	EventReactionAdd
)

func (t EventType) String() string {
	switch t {
	case EventMessageCreate:
		return "message_create"
	case EventMessageUpdate:
		return "message_update"
	case EventReactionAdd:
		return "reaction_add"
	default:
		return "unknown"
	}
}

// Event is anything a front-end publishes to the bot.
type Event interface {
	Type() EventType
}

// MessageCreate is published for every new message.
type MessageCreate struct {
	*Message
}

func (*MessageCreate) Type() EventType { return EventMessageCreate }

// MessageUpdate is published when a message is edited.
type MessageUpdate struct {
	*Message
}

func (*MessageUpdate) Type() EventType { return EventMessageUpdate }

// ReactionAdd is published when a user reacts to a message.
type ReactionAdd struct {
	UserID    string
	MessageID string
	ChannelID string
	GuildID   string
	Emoji     string
	At        time.Time
}

func (*ReactionAdd) Type() EventType { return EventReactionAdd }

// MessageOf returns the message carried by create and update events.
func MessageOf(ev Event) (*Message, bool) {
	switch e := ev.(type) {
	case *MessageCreate:
		return e.Message, e.Message != nil
	case *MessageUpdate:
		return e.Message, e.Message != nil
	default:
		return nil, false
	}
}

// Client is the narrow outbound surface of a chat platform.
type Client interface {
	// Self returns the bot's own user.
	Self() *User
	SendMessage(ctx context.Context, channelID, content string) (*Message, error)
	SendEmbed(ctx context.Context, channelID string, embed *Embed) (*Message, error)
	EditMessage(ctx context.Context, msg *Message, content string) (*Message, error)
	DeleteMessage(ctx context.Context, msg *Message, reason string) error
	AddReaction(ctx context.Context, msg *Message, emoji string) error
}

// EventSource hands out independent subscriptions to the inbound event stream.
// The returned func unsubscribes and closes the channel.
type EventSource interface {
	Subscribe(buffer int) (<-chan Event, func())
}
