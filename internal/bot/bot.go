// Package bot assembles the front-end independent parts: languages, guild
// storage, the dispatcher with every command, and the router.
package bot

import (
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/keshon/flowbot/datastore"
	"github.com/keshon/flowbot/internal/commands"
	"github.com/keshon/flowbot/internal/config"
	"github.com/keshon/flowbot/internal/storage"
	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/cmd"
	"github.com/keshon/flowbot/pkg/i18n"
	"github.com/keshon/flowbot/pkg/jobmgr"
)

type Bot struct {
	Dispatcher *cmd.Dispatcher
	Router     *cmd.Router
	Storage    *storage.Storage
	Languages  *i18n.Catalog
	Flows      *jobmgr.Manager
}

// New wires the command layer to client and events. extraOwners are added to
// cfg.OwnerIDs.
func New(cfg *config.Config, log *zap.SugaredLogger, client chat.Client, events chat.EventSource, extraOwners ...string) (*Bot, error) {
	langs, err := i18n.LoadDir(cfg.LanguageDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warnw("language directory not found, using built-in texts", "dir", cfg.LanguageDir)
		langs = i18n.NewCatalog()
	case err != nil:
		return nil, fmt.Errorf("load languages: %w", err)
	}
	log.Infow("languages loaded", "languages", langs.Names(), "default", cfg.DefaultLanguage)

	dsCfg := datastore.DefaultConfig(cfg.StoragePath)
	dsCfg.AutoSaveInterval = cfg.AutoSaveInterval
	dsCfg.Logger = log
	store, err := storage.New(dsCfg, langs)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	flows := jobmgr.NewManager(func(status string) { log.Debugw("flow status", "status", status) })
	d, err := cmd.NewDispatcher(cmd.Options{
		Client:          client,
		Events:          events,
		Prefixes:        cfg.Prefixes,
		OwnerIDs:        append(append([]string{}, cfg.OwnerIDs...), extraOwners...),
		Settings:        store,
		Languages:       langs,
		DefaultLanguage: cfg.DefaultLanguage,
		Middlewares:     []cmd.Middleware{cmd.WithLogging(log), commands.WithHistory(store)},
		Flows:           flows,
		DisableHelp:     cfg.DisableHelp,
		Logger:          log,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	d.Register(commands.All()...)

	router := cmd.NewRouter(d, cmd.RouterOptions{InvokeOnEdit: cfg.InvokeOnEdit, Logger: log})
	router.AddErrorHandler(commands.NewErrorReplier(client, log))

	return &Bot{
		Dispatcher: d,
		Router:     router,
		Storage:    store,
		Languages:  langs,
		Flows:      flows,
	}, nil
}

// Close stops running flows and flushes storage.
func (b *Bot) Close() error {
	for _, name := range b.Flows.List() {
		_ = b.Flows.Stop(name)
	}
	return b.Storage.Close()
}
