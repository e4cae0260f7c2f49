package interaction

import (
	"context"
	"strings"

	"github.com/keshon/flowbot/pkg/chat"
)

// All accepts an event only if every guard does.
func All(guards ...Guard) Guard {
	return func(ctx context.Context, ev chat.Event) bool {
		for _, g := range guards {
			if g != nil && !g(ctx, ev) {
				return false
			}
		}
		return true
	}
}

// Any accepts an event if at least one guard does.
func Any(guards ...Guard) Guard {
	return func(ctx context.Context, ev chat.Event) bool {
		for _, g := range guards {
			if g == nil || g(ctx, ev) {
				return true
			}
		}
		return false
	}
}

// Not inverts g.
func Not(g Guard) Guard {
	return func(ctx context.Context, ev chat.Event) bool {
		return g != nil && !g(ctx, ev)
	}
}

// MessageFrom accepts new messages posted by userID in channelID.
func MessageFrom(channelID, userID string) Guard {
	return func(_ context.Context, ev chat.Event) bool {
		m, ok := ev.(*chat.MessageCreate)
		return ok && m.Message != nil && m.Author != nil &&
			m.Author.ID == userID && m.ChannelID() == channelID
	}
}

// ContentIs accepts messages whose trimmed content equals one of values,
// ignoring case.
func ContentIs(values ...string) Guard {
	return func(_ context.Context, ev chat.Event) bool {
		m, ok := chat.MessageOf(ev)
		if !ok {
			return false
		}
		content := strings.TrimSpace(m.Content)
		for _, v := range values {
			if strings.EqualFold(content, v) {
				return true
			}
		}
		return false
	}
}

// ReactionFrom accepts reactions by userID on messageID with one of emojis.
// No emojis means any emoji.
func ReactionFrom(messageID, userID string, emojis ...string) Guard {
	return func(_ context.Context, ev chat.Event) bool {
		r, ok := ev.(*chat.ReactionAdd)
		if !ok || r.MessageID != messageID || r.UserID != userID {
			return false
		}
		if len(emojis) == 0 {
			return true
		}
		for _, e := range emojis {
			if r.Emoji == e {
				return true
			}
		}
		return false
	}
}
