package storage

import (
	"github.com/keshon/flowbot/pkg/cmd"
	"github.com/keshon/flowbot/pkg/i18n"
)

// GuildSettings is the snapshot loaded for one message. Writes go straight
// to the store; the snapshot is not refreshed.
type GuildSettings struct {
	GuildID string
	Record  Record

	lang  *i18n.Language
	store *Storage
}

var _ cmd.Settings = (*GuildSettings)(nil)

func (g *GuildSettings) CustomPrefix() string { return g.Record.Prefix }

// CustomLanguage returns nil when the stored language is unset or no longer
// loaded.
func (g *GuildSettings) CustomLanguage() *i18n.Language { return g.lang }

// Store returns the backing storage.
func (g *GuildSettings) Store() *Storage { return g.store }

func (g *GuildSettings) SetPrefix(prefix string) error {
	return g.store.SetPrefix(g.GuildID, prefix)
}

func (g *GuildSettings) SetLanguage(name string) error {
	return g.store.SetLanguage(g.GuildID, name)
}

func (g *GuildSettings) IncrementCounter() (int, error) {
	return g.store.IncrementCounter(g.GuildID)
}

// Counter reads the current value from the store.
func (g *GuildSettings) Counter() (int, error) {
	return g.store.Counter(g.GuildID)
}

func (g *GuildSettings) ResetCounter() error {
	return g.store.ResetCounter(g.GuildID)
}
