package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/patrickjm/yapl/cache"
	"github.com/patrickjm/yapl/core"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return NewFromClient(client, opts...), mr
}

func TestStoreMiss(t *testing.T) {
	s, _ := newTestStore(t)
	msgs, ok, err := s.Get(context.Background(), "absent")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, msgs)
}

func TestStoreRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	stored := []core.Message{
		{Role: core.RoleAssistant, Content: "cached answer"},
		{Role: core.RoleTool, Content: "42", ToolCallID: "c1"},
	}
	meta := cache.Metadata{
		Provider: "openai",
		Model:    core.Model{Name: "gpt-4o-mini"},
		Tools:    []string{"search"},
		Format:   core.Format{JSON: true},
	}

	require.NoError(t, s.Set(ctx, "k1", stored, meta))

	got, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, stored, got)
}

func TestStorePrefix(t *testing.T) {
	s, mr := newTestStore(t, WithPrefix("custom:"))
	require.NoError(t, s.Set(context.Background(), "k", []core.Message{{Role: core.RoleAssistant, Content: "v"}}, cache.Metadata{}))
	assert.True(t, mr.Exists("custom:k"))
	assert.False(t, mr.Exists("yapl:cache:k"))
}

func TestStoreTTL(t *testing.T) {
	s, mr := newTestStore(t, WithTTL(time.Minute))
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []core.Message{{Role: core.RoleAssistant, Content: "v"}}, cache.Metadata{}))

	mr.FastForward(30 * time.Second)
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(time.Minute)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreCorruptEntry(t *testing.T) {
	s, mr := newTestStore(t)
	require.NoError(t, mr.Set("yapl:cache:bad", "not json"))
	_, ok, err := s.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}
