package commands

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/keshon/flowbot/datastore"
	"github.com/keshon/flowbot/internal/storage"
	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/chat/chattest"
	"github.com/keshon/flowbot/pkg/cmd"
	"github.com/keshon/flowbot/pkg/i18n"
)

type fixture struct {
	d      *cmd.Dispatcher
	client *chattest.Client
	hub    *chat.Hub
	store  *storage.Storage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	langs, err := i18n.LoadDir("../../locales")
	require.NoError(t, err)

	store, err := storage.New(datastore.Config{FilePath: filepath.Join(t.TempDir(), "db.json")}, langs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	client := chattest.NewClient()
	hub := chat.NewHub()
	t.Cleanup(hub.Close)

	d, err := cmd.NewDispatcher(cmd.Options{
		Client:          client,
		Events:          hub,
		Prefixes:        []string{"x!"},
		OwnerIDs:        []string{"owner"},
		Settings:        store,
		Languages:       langs,
		DefaultLanguage: "en",
		Middlewares:     []cmd.Middleware{WithHistory(store)},
		DisableHelp:     true,
	})
	require.NoError(t, err)
	d.Register(All()...)
	return &fixture{d: d, client: client, hub: hub, store: store}
}

func (f *fixture) dispatch(msg *chat.Message) error {
	return f.d.Dispatch(context.Background(), msg, &chat.MessageCreate{Message: msg})
}

func (f *fixture) run(t *testing.T, content string) error {
	t.Helper()
	return f.dispatch(chattest.GuildMessage(content, chat.PermissionAll, chat.PermissionAll))
}

func (f *fixture) last(t *testing.T) string {
	t.Helper()
	s, ok := f.client.Last()
	require.True(t, ok, "nothing was sent")
	return s.Content
}

// waitSent waits until a sent message starts with prefix and returns the newest such.
func (f *fixture) waitSent(t *testing.T, prefix string, n int) *chat.Message {
	t.Helper()
	var found *chat.Message
	require.Eventually(t, func() bool {
		count := 0
		for _, s := range f.client.Sent() {
			if strings.HasPrefix(s.Content, prefix) {
				count++
				found = s.Message
			}
		}
		return count >= n
	}, 2*time.Second, time.Millisecond)
	return found
}
