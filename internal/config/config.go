// Package config reads bot settings from the environment. A .env file in the
// working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`

	Prefixes        []string `env:"BOT_PREFIXES" envDefault:"!" envSeparator:","`
	OwnerIDs        []string `env:"BOT_OWNER_IDS" envSeparator:","`
	DefaultLanguage string   `env:"BOT_LANGUAGE" envDefault:"en"`
	LanguageDir     string   `env:"BOT_LANGUAGE_DIR" envDefault:"locales"`
	InvokeOnEdit    bool     `env:"BOT_INVOKE_ON_EDIT" envDefault:"false"`
	DisableHelp     bool     `env:"BOT_DISABLE_HELP" envDefault:"false"`
	MentionPrefix   bool     `env:"BOT_MENTION_PREFIX" envDefault:"true"`

	StoragePath      string        `env:"STORAGE_PATH" envDefault:"datastore.json"`
	AutoSaveInterval time.Duration `env:"STORAGE_AUTOSAVE" envDefault:"10s"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogEncoding string `env:"LOG_ENCODING" envDefault:"console"`

	GuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
}

// Load reads .env (if any) and the environment.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// ValidateDiscord checks what the Discord front-end needs.
func (c *Config) ValidateDiscord() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	return c.Validate()
}

// Validate checks settings shared by every front-end.
func (c *Config) Validate() error {
	if len(c.Prefixes) == 0 && !c.MentionPrefix {
		return errors.New("no command prefix configured")
	}
	for _, p := range c.Prefixes {
		if p == "" {
			return errors.New("BOT_PREFIXES contains an empty prefix")
		}
	}
	return nil
}

// Blacklisted reports whether the bot should leave guildID.
func (c *Config) Blacklisted(guildID string) bool {
	for _, id := range c.GuildBlacklist {
		if id == guildID {
			return true
		}
	}
	return false
}
