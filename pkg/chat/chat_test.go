package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_FanOut(t *testing.T) {
	h := NewHub()
	a, unsubA := h.Subscribe(1)
	b, unsubB := h.Subscribe(1)
	defer unsubB()
	require.Equal(t, 2, h.Subscribers())

	ev := &ReactionAdd{MessageID: "m"}
	assert.Equal(t, 2, h.Publish(ev))
	assert.Same(t, ev, <-a)
	assert.Same(t, ev, <-b)

	unsubA()
	unsubA()
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, h.Subscribers())
}

func TestHub_SlowSubscriberDrops(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe(1)
	defer unsub()

	assert.Equal(t, 1, h.Publish(&ReactionAdd{}))
	assert.Equal(t, 0, h.Publish(&ReactionAdd{}))
	assert.Equal(t, uint64(1), h.Dropped())
	<-ch
}

func TestHub_Close(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe(0)
	h.Close()
	h.Close()
	_, open := <-ch
	assert.False(t, open)
	unsub()

	late, _ := h.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
	assert.Zero(t, h.Publish(&ReactionAdd{}))
}

func TestPermissions(t *testing.T) {
	p := PermissionSendMessages | PermissionEmbedLinks
	assert.True(t, p.Has(PermissionSendMessages))
	assert.False(t, p.Has(PermissionSendMessages|PermissionManageGuild))
	assert.Equal(t, PermissionManageGuild, p.Missing(PermissionManageGuild|PermissionEmbedLinks))
	assert.Equal(t, "Embed Links, Send Messages", p.String())
	assert.Equal(t, "none", PermissionNone.String())
	assert.True(t, PermissionAll.Has(PermissionAdministrator|PermissionManageMessages))
}

func TestMessageOf(t *testing.T) {
	m := &Message{ID: "1"}
	got, ok := MessageOf(&MessageUpdate{Message: m})
	require.True(t, ok)
	assert.Same(t, m, got)

	_, ok = MessageOf(&ReactionAdd{})
	assert.False(t, ok)
	_, ok = MessageOf(&MessageCreate{})
	assert.False(t, ok)

	assert.Equal(t, "", (&Message{}).GuildID())
	assert.Equal(t, "<@42>", (&User{ID: "42"}).Mention())
	assert.Equal(t, "message_update", EventMessageUpdate.String())
}
