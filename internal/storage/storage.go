// Package storage keeps per-guild records in the datastore and serves them to
// the dispatcher as cmd.Settings.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keshon/flowbot/datastore"
	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/cmd"
	"github.com/keshon/flowbot/pkg/i18n"
)

const (
	commandHistoryLimit int = 20
	// MaxPrefixLength bounds custom prefixes.
	MaxPrefixLength int = 10
)

var (
	ErrPrefixTooLong   = fmt.Errorf("prefix is longer than %d characters", MaxPrefixLength)
	ErrUnknownLanguage = errors.New("unknown language")
)

type Storage struct {
	ds    *datastore.DataStore
	langs *i18n.Catalog
}

type CommandHistoryRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Param       string    `json:"param"`
	Datetime    time.Time `json:"datetime"`
}

type Record struct {
	Prefix              string                 `json:"prefix,omitempty"`
	Language            string                 `json:"language,omitempty"`
	Counter             int                    `json:"counter"`
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
}

// New opens the datastore described by cfg. langs resolves stored language
// names and may be nil.
func New(cfg datastore.Config, langs *i18n.Catalog) (*Storage, error) {
	ds, err := datastore.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds, langs: langs}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func (s *Storage) update(guildID string, fn func(*Record) error) error {
	if err := datastore.Update(s.ds, guildID, fn); err != nil {
		return fmt.Errorf("update guild %s: %w", guildID, err)
	}
	return nil
}

// Guild returns the stored record, or a zero record for unknown guilds.
func (s *Storage) Guild(guildID string) (Record, error) {
	var record Record
	if _, err := s.ds.Get(guildID, &record); err != nil {
		return Record{}, fmt.Errorf("read guild %s: %w", guildID, err)
	}
	return record, nil
}

// SetPrefix stores a custom prefix. An empty prefix removes it.
func (s *Storage) SetPrefix(guildID, prefix string) error {
	if len([]rune(prefix)) > MaxPrefixLength {
		return ErrPrefixTooLong
	}
	return s.update(guildID, func(r *Record) error {
		r.Prefix = prefix
		return nil
	})
}

// SetLanguage stores the guild language. An empty name resets to the default.
func (s *Storage) SetLanguage(guildID, name string) error {
	if name != "" {
		if _, ok := s.langs.Get(name); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownLanguage, name)
		}
	}
	return s.update(guildID, func(r *Record) error {
		r.Language = name
		return nil
	})
}

// AppendCommandToHistory appends a command history record for a guild,
// keeping the newest entries only.
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	return s.update(guildID, func(r *Record) error {
		r.CommandsHistoryList = append(r.CommandsHistoryList, command)
		if n := len(r.CommandsHistoryList); n > commandHistoryLimit {
			r.CommandsHistoryList = r.CommandsHistoryList[n-commandHistoryLimit:]
		}
		return nil
	})
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.Guild(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistoryList, nil
}

// IncrementCounter adds one to the guild counter and returns the new value.
func (s *Storage) IncrementCounter(guildID string) (int, error) {
	var value int
	err := s.update(guildID, func(r *Record) error {
		r.Counter++
		value = r.Counter
		return nil
	})
	return value, err
}

func (s *Storage) Counter(guildID string) (int, error) {
	record, err := s.Guild(guildID)
	return record.Counter, err
}

func (s *Storage) ResetCounter(guildID string) error {
	return s.update(guildID, func(r *Record) error {
		r.Counter = 0
		return nil
	})
}

// Load implements cmd.SettingsLoader.
func (s *Storage) Load(_ context.Context, guild *chat.Guild) (cmd.Settings, error) {
	record, err := s.Guild(guild.ID)
	if err != nil {
		return nil, err
	}
	gs := &GuildSettings{GuildID: guild.ID, Record: record, store: s}
	if record.Language != "" {
		gs.lang, _ = s.langs.Get(record.Language)
	}
	return gs, nil
}

var _ cmd.SettingsLoader = (*Storage)(nil)
