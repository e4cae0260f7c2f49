package cmd

import (
	"context"

	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/i18n"
)

// Settings are per-guild overrides. Implementations may carry more; commands
// type-assert Context.Settings to reach it.
type Settings interface {
	// CustomPrefix returns "" when the guild has none.
	CustomPrefix() string
	// CustomLanguage returns nil when the guild uses the default.
	CustomLanguage() *i18n.Language
}

// SettingsLoader fetches settings for a guild. It is called for every guild
// message that reaches the dispatcher; caching is up to the implementation.
type SettingsLoader interface {
	Load(ctx context.Context, guild *chat.Guild) (Settings, error)
}

// SettingsLoaderFunc adapts a function to SettingsLoader.
type SettingsLoaderFunc func(ctx context.Context, guild *chat.Guild) (Settings, error)

func (f SettingsLoaderFunc) Load(ctx context.Context, guild *chat.Guild) (Settings, error) {
	return f(ctx, guild)
}

// BasicSettings is a static Settings value.
type BasicSettings struct {
	Prefix   string
	Language *i18n.Language
}

func (s BasicSettings) CustomPrefix() string            { return s.Prefix }
func (s BasicSettings) CustomLanguage() *i18n.Language { return s.Language }
