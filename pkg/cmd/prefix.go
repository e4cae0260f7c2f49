package cmd

import (
	"context"
	"strings"

	"github.com/keshon/flowbot/pkg/chat"
)

// PrefixLoader computes an extra prefix for a message, for example a mention
// of the bot. An empty result is ignored.
type PrefixLoader func(ctx context.Context, msg *chat.Message) string

// MentionPrefix accepts "<@id>" and "<@!id>" mentions of the bot as prefixes.
func MentionPrefix(self func() *chat.User) PrefixLoader {
	return func(_ context.Context, msg *chat.Message) string {
		u := self()
		if u == nil {
			return ""
		}
		for _, p := range []string{"<@" + u.ID + ">", "<@!" + u.ID + ">"} {
			if strings.HasPrefix(msg.Content, p) {
				return p
			}
		}
		return ""
	}
}

// MatchPrefix returns the first candidate content starts with. Candidates are
// tried in order; a shorter candidate listed first wins over a longer one.
func MatchPrefix(content string, candidates []string) (string, bool) {
	for _, p := range candidates {
		if p != "" && strings.HasPrefix(content, p) {
			return p, true
		}
	}
	return "", false
}

// prefixCandidates lists static prefixes, then loader results, then the guild
// override.
func (d *Dispatcher) prefixCandidates(ctx context.Context, msg *chat.Message, settings Settings) []string {
	d.mu.RLock()
	out := make([]string, 0, len(d.prefixes)+len(d.loaders)+1)
	out = append(out, d.prefixes...)
	loaders := append([]PrefixLoader(nil), d.loaders...)
	d.mu.RUnlock()

	for _, load := range loaders {
		if p := load(ctx, msg); p != "" {
			out = append(out, p)
		}
	}
	if settings != nil {
		if p := settings.CustomPrefix(); p != "" {
			out = append(out, p)
		}
	}
	return out
}
