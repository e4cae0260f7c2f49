package cmd

import (
	"fmt"

	"github.com/keshon/flowbot/pkg/chat"
)

// ErrorKind classifies command failures that embedders are expected to
// report back to users.
type ErrorKind int

const (
	NotInGuild ErrorKind = iota + 1
	NotOwner
	InsufficientUserPermissions
	InsufficientBotPermissions
	SubCommandNotFound
	MissingEmbedPermissions
	UnknownTranslationKey
	Timeout
	NoLanguage
)

var kindReasons = map[ErrorKind]string{
	NotInGuild:                  "Guild-only command invoked in non-guild environment.",
	NotOwner:                    "Owner-only command invoked by a non-owner.",
	InsufficientUserPermissions: "User has insufficient permissions.",
	InsufficientBotPermissions:  "Bot has insufficient permissions.",
	SubCommandNotFound:          "Subcommand not found.",
	MissingEmbedPermissions:     "Bot is missing the permission to embed links.",
	UnknownTranslationKey:       "Translation key not found.",
	Timeout:                     "Timed out waiting for a reply.",
	NoLanguage:                  "No language found.",
}

var kindNames = map[ErrorKind]string{
	NotInGuild:                  "not_in_guild",
	NotOwner:                    "not_owner",
	InsufficientUserPermissions: "insufficient_user_permissions",
	InsufficientBotPermissions:  "insufficient_bot_permissions",
	SubCommandNotFound:          "sub_command_not_found",
	MissingEmbedPermissions:     "missing_embed_permissions",
	UnknownTranslationKey:       "unknown_translation_key",
	Timeout:                     "timeout",
	NoLanguage:                  "no_language",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Reason is the default user-facing text for k.
func (k ErrorKind) Reason() string { return kindReasons[k] }

// Error is the single error type for the taxonomy above. Fields beyond Kind
// are filled where they apply: permission kinds carry Required and Actual,
// SubCommandNotFound carries the unmatched Token, UnknownTranslationKey
// carries Key.
type Error struct {
	Kind    ErrorKind
	Message *chat.Message
	Command Command

	Required chat.Permissions
	Actual   chat.Permissions
	Token    string
	Key      string

	Err error
}

func (e *Error) Error() string {
	s := e.Kind.Reason()
	if e.Command != nil {
		s = e.Command.Info().Name + ": " + s
	}
	switch e.Kind {
	case InsufficientUserPermissions, InsufficientBotPermissions:
		s += " Missing: " + e.Missing().String() + "."
	case SubCommandNotFound:
		if e.Token != "" {
			s += fmt.Sprintf(" (%q)", e.Token)
		}
	case UnknownTranslationKey:
		s += fmt.Sprintf(" (%q)", e.Key)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the Err* values below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Missing returns the required permission bits that were absent.
func (e *Error) Missing() chat.Permissions {
	return e.Actual.Missing(e.Required)
}

var (
	ErrNotInGuild                  = &Error{Kind: NotInGuild}
	ErrNotOwner                    = &Error{Kind: NotOwner}
	ErrInsufficientUserPermissions = &Error{Kind: InsufficientUserPermissions}
	ErrInsufficientBotPermissions  = &Error{Kind: InsufficientBotPermissions}
	ErrSubCommandNotFound          = &Error{Kind: SubCommandNotFound}
	ErrMissingEmbedPermissions     = &Error{Kind: MissingEmbedPermissions}
	ErrUnknownTranslationKey       = &Error{Kind: UnknownTranslationKey}
	ErrTimeout                     = &Error{Kind: Timeout}
	ErrNoLanguage                  = &Error{Kind: NoLanguage}
)
