package cmd

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/chat/chattest"
)

const allPerms = chat.PermissionAll

// MockSettingsLoader is a mock implementation of SettingsLoader.
type MockSettingsLoader struct {
	mock.Mock
}

func (m *MockSettingsLoader) Load(ctx context.Context, guild *chat.Guild) (Settings, error) {
	args := m.Called(ctx, guild)
	s, _ := args.Get(0).(Settings)
	return s, args.Error(1)
}

// recorder is a command that remembers every invocation.
type recorder struct {
	Base
	mu    sync.Mutex
	calls [][]string
	ctxs  []*Context
	err   error
}

func newRecorder(name string, opts ...Option) *recorder {
	return &recorder{Base: NewBase(name, "test", opts...)}
}

func (r *recorder) Execute(_ context.Context, c *Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c.Args)
	r.ctxs = append(r.ctxs, c)
	return r.err
}

func (r *recorder) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func (r *recorder) LastContext() *Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ctxs) == 0 {
		return nil
	}
	return r.ctxs[len(r.ctxs)-1]
}

type fixture struct {
	d      *Dispatcher
	client *chattest.Client
	hub    *chat.Hub
}

func newFixture(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()
	client := chattest.NewClient()
	hub := chat.NewHub()
	t.Cleanup(hub.Close)
	opts := Options{
		Client:      client,
		Events:      hub,
		Prefixes:    []string{"x!"},
		DisableHelp: true,
	}
	if mutate != nil {
		mutate(&opts)
	}
	d, err := NewDispatcher(opts)
	require.NoError(t, err)
	return &fixture{d: d, client: client, hub: hub}
}

func (f *fixture) dispatch(msg *chat.Message) error {
	return f.d.Dispatch(context.Background(), msg, &chat.MessageCreate{Message: msg})
}

func guildMsg(content string) *chat.Message {
	return chattest.GuildMessage(content, allPerms, allPerms)
}
