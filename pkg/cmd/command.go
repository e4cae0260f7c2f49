// Package cmd resolves chat messages into command invocations: it matches a
// prefix, looks the command up by name or alias, checks where and by whom it
// may run, and hands it a Context with helpers for replying, translating and
// running interaction flows.
//
// Front-ends feed messages in through Router (or Dispatcher directly) and
// implement chat.Client for the outbound side.
package cmd

import (
	"context"

	"github.com/keshon/flowbot/pkg/chat"
)

// Info describes a command. Commands return a pointer to their own Info; the
// registry and help read it, nothing writes it after construction.
type Info struct {
	Name        string
	Category    string
	Aliases     []string
	Description string

	GuildOnly bool
	OwnerOnly bool
	Hidden    bool

	UserPermissions chat.Permissions
	BotPermissions  chat.Permissions
}

// Command is anything the dispatcher can run.
type Command interface {
	Info() *Info
	Execute(ctx context.Context, c *Context) error
}

// Option customises an Info built by NewBase.
type Option func(*Info)

// Aliases adds alternative names.
func Aliases(aliases ...string) Option {
	return func(i *Info) { i.Aliases = append(i.Aliases, aliases...) }
}

// Description sets the help text.
func Description(s string) Option {
	return func(i *Info) { i.Description = s }
}

// AllowDM lets the command run outside of guilds.
func AllowDM() Option {
	return func(i *Info) { i.GuildOnly = false }
}

// OwnerOnly restricts the command to the configured owners.
func OwnerOnly() Option {
	return func(i *Info) { i.OwnerOnly = true }
}

// Hidden keeps the command out of help listings.
func Hidden() Option {
	return func(i *Info) { i.Hidden = true }
}

// UserPermissions sets what the invoking member needs in the channel.
func UserPermissions(p chat.Permissions) Option {
	return func(i *Info) { i.UserPermissions = p }
}

// BotPermissions sets what the bot needs in the channel. It replaces the
// default of SendMessages.
func BotPermissions(p chat.Permissions) Option {
	return func(i *Info) { i.BotPermissions = p }
}

// Base carries a command's Info. Embed it in command structs:
//
//	type ping struct{ cmd.Base }
//
//	func newPing() *ping {
//	    return &ping{Base: cmd.NewBase("ping", "generic", cmd.Aliases("pong"))}
//	}
type Base struct {
	info Info
}

// NewBase builds an Info for a guild-only, visible command that needs the bot
// to be able to send messages, then applies opts.
func NewBase(name, category string, opts ...Option) Base {
	info := Info{
		Name:           name,
		Category:       category,
		GuildOnly:      true,
		BotPermissions: chat.PermissionSendMessages,
	}
	for _, opt := range opts {
		opt(&info)
	}
	return Base{info: info}
}

// Info returns the descriptor.
func (b *Base) Info() *Info { return &b.info }

// Func is a Command backed by a plain function.
type Func struct {
	Base
	Run func(ctx context.Context, c *Context) error
}

// New returns a command running fn.
func New(base Base, fn func(ctx context.Context, c *Context) error) *Func {
	return &Func{Base: base, Run: fn}
}

// Execute calls Run.
func (f *Func) Execute(ctx context.Context, c *Context) error {
	return f.Run(ctx, c)
}
