package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/flowbot/datastore"
	"github.com/keshon/flowbot/pkg/chat"
	"github.com/keshon/flowbot/pkg/i18n"
)

func newStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.json")
	langs := i18n.NewCatalog(
		i18n.NewLanguage("en", map[string]string{"hi": "hi"}),
		i18n.NewLanguage("ru", map[string]string{"hi": "привет"}),
	)
	s, err := New(datastore.Config{FilePath: path}, langs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestStorage_PrefixAndLanguage(t *testing.T) {
	s, _ := newStorage(t)

	require.NoError(t, s.SetPrefix("g", "?"))
	assert.ErrorIs(t, s.SetPrefix("g", "waytoolongprefix"), ErrPrefixTooLong)
	require.NoError(t, s.SetLanguage("g", "ru"))
	assert.ErrorIs(t, s.SetLanguage("g", "de"), ErrUnknownLanguage)

	settings, err := s.Load(context.Background(), &chat.Guild{ID: "g"})
	require.NoError(t, err)
	assert.Equal(t, "?", settings.CustomPrefix())
	require.NotNil(t, settings.CustomLanguage())
	assert.Equal(t, "ru", settings.CustomLanguage().Name())

	fresh, err := s.Load(context.Background(), &chat.Guild{ID: "other"})
	require.NoError(t, err)
	assert.Empty(t, fresh.CustomPrefix())
	assert.Nil(t, fresh.CustomLanguage())
}

func TestStorage_Counter(t *testing.T) {
	s, _ := newStorage(t)
	settings, err := s.Load(context.Background(), &chat.Guild{ID: "g"})
	require.NoError(t, err)
	gs := settings.(*GuildSettings)

	for i := 1; i <= 3; i++ {
		v, err := gs.IncrementCounter()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	v, err := gs.Counter()
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	require.NoError(t, gs.ResetCounter())
	v, err = s.Counter("g")
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestStorage_HistoryIsCapped(t *testing.T) {
	s, _ := newStorage(t)
	for i := 0; i < commandHistoryLimit+5; i++ {
		require.NoError(t, s.AppendCommandToHistory("g", CommandHistoryRecord{Command: fmt.Sprint(i)}))
	}
	history, err := s.FetchCommandHistory("g")
	require.NoError(t, err)
	require.Len(t, history, commandHistoryLimit)
	assert.Equal(t, "5", history[0].Command)
	assert.Equal(t, fmt.Sprint(commandHistoryLimit+4), history[len(history)-1].Command)
}

func TestStorage_Persists(t *testing.T) {
	s, path := newStorage(t)
	require.NoError(t, s.SetPrefix("g", "$"))
	_, err := s.IncrementCounter("g")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := New(datastore.Config{FilePath: path}, nil)
	require.NoError(t, err)
	defer reopened.Close()
	record, err := reopened.Guild("g")
	require.NoError(t, err)
	assert.Equal(t, "$", record.Prefix)
	assert.Equal(t, 1, record.Counter)
}
