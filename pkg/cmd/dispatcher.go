package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/i18n"
	"github.com/keshon/flowbot/pkg/interaction"
	"github.com/keshon/flowbot/pkg/jobmgr"
)

// Options configures a Dispatcher. Client is required.
type Options struct {
	Client chat.Client
	// Events feeds WaitForMessage and interaction flows. Without it those
	// helpers fail.
	Events chat.EventSource

	Prefixes      []string
	PrefixLoaders []PrefixLoader
	OwnerIDs      []string
	Settings      SettingsLoader

	Languages       *i18n.Catalog
	DefaultLanguage string

	// Middlewares wrap every command passed to Register, first outermost.
	Middlewares []Middleware
	// Flows tracks running interaction flows. A fresh manager is used when nil.
	Flows    *jobmgr.Manager
	Executor interaction.Executor

	DisableHelp bool
	Logger      *zap.SugaredLogger
}

// Dispatcher turns messages into command executions.
type Dispatcher struct {
	mu       sync.RWMutex
	prefixes []string
	loaders  []PrefixLoader

	registry  *Registry
	client    chat.Client
	events    chat.EventSource
	owners    []string
	settings  SettingsLoader
	languages *i18n.Catalog
	defLang   string
	mws       []Middleware
	flows     *jobmgr.Manager
	executor  interaction.Executor
	log       *zap.SugaredLogger
}

// NewDispatcher builds a dispatcher and registers the help command unless
// opts.DisableHelp is set.
func NewDispatcher(opts Options) (*Dispatcher, error) {
	if opts.Client == nil {
		return nil, errors.New("cmd: dispatcher needs a client")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	d := &Dispatcher{
		prefixes:  slices.Clone(opts.Prefixes),
		loaders:   slices.Clone(opts.PrefixLoaders),
		registry:  NewRegistry(),
		client:    opts.Client,
		events:    opts.Events,
		owners:    slices.Clone(opts.OwnerIDs),
		settings:  opts.Settings,
		languages: opts.Languages,
		defLang:   opts.DefaultLanguage,
		mws:       slices.Clone(opts.Middlewares),
		flows:     opts.Flows,
		executor:  opts.Executor,
		log:       log,
	}
	if d.flows == nil {
		d.flows = jobmgr.NewManager(func(s string) { log.Debugw("flow", "status", s) })
	}
	if d.executor == nil && d.events != nil {
		d.executor = interaction.NewExecutor(d.events, log)
	}
	if !opts.DisableHelp {
		d.Register(NewHelp())
	}
	return d, nil
}

// Register wraps commands with the configured middlewares and adds them.
func (d *Dispatcher) Register(cmds ...Command) {
	for _, c := range cmds {
		d.registry.Register(Apply(c, d.mws...))
	}
}

// AddPrefix appends a static prefix.
func (d *Dispatcher) AddPrefix(p string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prefixes = append(d.prefixes, p)
}

// AddPrefixLoader appends a dynamic prefix source.
func (d *Dispatcher) AddPrefixLoader(l PrefixLoader) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loaders = append(d.loaders, l)
}

// Prefixes returns the static prefixes.
func (d *Dispatcher) Prefixes() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.prefixes)
}

func (d *Dispatcher) Registry() *Registry            { return d.registry }
func (d *Dispatcher) Client() chat.Client            { return d.client }
func (d *Dispatcher) Events() chat.EventSource       { return d.events }
func (d *Dispatcher) Flows() *jobmgr.Manager         { return d.flows }
func (d *Dispatcher) Executor() interaction.Executor { return d.executor }
func (d *Dispatcher) Languages() *i18n.Catalog       { return d.languages }
func (d *Dispatcher) Logger() *zap.SugaredLogger     { return d.log }
func (d *Dispatcher) IsOwner(userID string) bool     { return slices.Contains(d.owners, userID) }

// Verify checks msg against c with the configured owners.
func (d *Dispatcher) Verify(msg *chat.Message, c Command) error {
	return Verify(msg, c, d.owners)
}

// DefaultLanguageName returns the configured fallback language name.
func (d *Dispatcher) DefaultLanguageName() string { return d.defLang }

// DefaultLanguage returns the configured fallback language, or nil.
func (d *Dispatcher) DefaultLanguage() *i18n.Language {
	l, _ := d.languages.Get(d.defLang)
	return l
}

// Dispatch runs the command msg invokes, if any. Messages that are not
// commands return nil. Precondition failures come back as *Error; whatever
// the command returns is passed through.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *chat.Message, ev chat.Event) error {
	if msg == nil || msg.Author == nil || msg.Author.Bot {
		return nil
	}
	if self := d.client.Self(); self != nil && msg.Author.ID == self.ID {
		return nil
	}

	var settings Settings
	if msg.FromGuild() && d.settings != nil {
		s, err := d.settings.Load(ctx, msg.Guild)
		if err != nil {
			return fmt.Errorf("load settings for guild %s: %w", msg.Guild.ID, err)
		}
		settings = s
	}

	prefix, ok := MatchPrefix(msg.Content, d.prefixCandidates(ctx, msg, settings))
	if !ok {
		return nil
	}

	name, rest := cutToken(strings.TrimLeftFunc(msg.Content[len(prefix):], unicode.IsSpace))
	c, ok := d.registry.Get(name)
	if !ok {
		return nil
	}
	args := strings.Fields(rest)

	if err := d.Verify(msg, c); err != nil {
		return err
	}

	d.log.Debugw("dispatching command",
		"command", c.Info().Name,
		"guild", msg.GuildID(),
		"channel", msg.ChannelID(),
		"user", msg.Author.ID,
	)
	return c.Execute(ctx, NewContext(d, msg, c, args, prefix, ev, settings))
}

// cutToken splits s at its first whitespace run.
func cutToken(s string) (token, rest string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}
