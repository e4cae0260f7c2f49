package commands

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/keshon/flowbot/internal/storage"
	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/cmd"
)

// NewSettings returns the settings group: prefix, language and show (default).
func NewSettings() *cmd.Group {
	admin := cmd.UserPermissions(chat.PermissionManageGuild)
	show := cmd.New(cmd.NewBase("show", categorySettings, admin,
		cmd.Aliases("view"),
		cmd.Description("Show the guild settings"),
	), showSettings)

	return cmd.NewGroup(
		cmd.NewBase("settings", categorySettings, admin,
			cmd.Aliases("config"),
			cmd.Description("View or change guild settings"),
		),
		[]cmd.Command{
			cmd.New(cmd.NewBase("prefix", categorySettings, admin,
				cmd.Description("Set the guild prefix, or reset it with no argument"),
			), setPrefix),
			cmd.New(cmd.NewBase("language", categorySettings, admin,
				cmd.Aliases("lang"),
				cmd.Description("Set the guild language, or list languages with no argument"),
			), setLanguage),
			show,
		},
		show,
	)
}

func showSettings(ctx context.Context, c *cmd.Context) error {
	gs, err := guildSettings(c)
	if err != nil {
		return err
	}
	record, err := gs.Store().Guild(gs.GuildID)
	if err != nil {
		return err
	}
	language := record.Language
	if language == "" {
		language = c.Dispatcher().DefaultLanguageName()
	}
	_, err = say(ctx, c, "settingsShow", map[string]string{
		"prefix":   currentPrefix(c, record),
		"language": language,
		"counter":  strconv.Itoa(record.Counter),
	}, "Prefix: %s\nLanguage: %s\nCounter: %d", currentPrefix(c, record), language, record.Counter)
	return err
}

func setPrefix(ctx context.Context, c *cmd.Context) error {
	gs, err := guildSettings(c)
	if err != nil {
		return err
	}
	prefix := strings.Join(c.Args, " ")
	if err := gs.SetPrefix(prefix); err != nil {
		if errors.Is(err, storage.ErrPrefixTooLong) {
			_, rerr := say(ctx, c, "settingsPrefixTooLong", nil, "The prefix can be up to %d characters.", storage.MaxPrefixLength)
			return rerr
		}
		return err
	}
	if prefix == "" {
		_, err = say(ctx, c, "settingsPrefixReset", nil, "The custom prefix was removed.")
		return err
	}
	_, err = say(ctx, c, "settingsPrefixSet", map[string]string{"prefix": prefix}, "Successfully set new prefix to %s!", prefix)
	return err
}

func setLanguage(ctx context.Context, c *cmd.Context) error {
	gs, err := guildSettings(c)
	if err != nil {
		return err
	}
	names := c.Dispatcher().Languages().Names()
	if len(c.Args) == 0 {
		_, err = say(ctx, c, "settingsLanguages", map[string]string{"languages": strings.Join(names, ", ")},
			"Available languages: %s", strings.Join(names, ", "))
		return err
	}

	name := strings.ToLower(c.Args[0])
	if err := gs.SetLanguage(name); err != nil {
		if errors.Is(err, storage.ErrUnknownLanguage) {
			_, rerr := say(ctx, c, "settingsUnknownLanguage", map[string]string{"language": name, "languages": strings.Join(names, ", ")},
				"Unknown language %s. Available: %s", name, strings.Join(names, ", "))
			return rerr
		}
		return err
	}
	lang, _ := c.Dispatcher().Languages().Get(name)
	_, err = c.ReplyTranslate(ctx, "settingsLanguageSet", map[string]string{"language": name}, lang)
	return err
}
