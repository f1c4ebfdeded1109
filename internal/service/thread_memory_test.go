package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/snapcook/backend/internal/types"
)

func pair(pos int, q, a string) []types.Message {
	return []types.Message{
		{Role: types.RoleUser, Content: q, Position: pos},
		{Role: types.RoleAssistant, Content: a, Position: pos + 1},
	}
}

func TestMemoryThreadStoreSetsContextOnce(t *testing.T) {
	store := NewMemoryThreadStore(10, time.Hour)
	ctx := context.Background()

	_, found, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Append(ctx, "t1", "Title: Soup", pair(0, "hi", "hello")...))
	require.NoError(t, store.Append(ctx, "t1", "Title: Cake", pair(2, "next", "ok")...))

	thread, found, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Title: Soup", thread.RecipeContext)
	assert.Len(t, thread.Messages, 4)
	assert.Equal(t, 4, thread.NextPosition())
}

func TestMemoryThreadStoreCapsHistory(t *testing.T) {
	store := NewMemoryThreadStore(4, time.Hour)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, "t1", "", pair(2*i, "q", "a")...))
	}

	thread, _, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, thread.Messages, 4)
	assert.Equal(t, 6, thread.Messages[0].Position)
	assert.Equal(t, types.RoleUser, thread.Messages[0].Role)
	assert.Equal(t, 10, thread.NextPosition())
}

func TestMemoryThreadStoreExpires(t *testing.T) {
	store := NewMemoryThreadStore(10, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "t1", "ctx", pair(0, "q", "a")...))

	now = now.Add(30 * time.Second)
	_, found, _ := store.Load(ctx, "t1")
	assert.True(t, found)

	// Appending refreshes the expiry.
	require.NoError(t, store.Append(ctx, "t1", "", pair(2, "q", "a")...))
	now = now.Add(45 * time.Second)
	_, found, _ = store.Load(ctx, "t1")
	assert.True(t, found)

	now = now.Add(time.Minute)
	_, found, _ = store.Load(ctx, "t1")
	assert.False(t, found)
}

func TestMemoryThreadStoreSweepsUntouchedThreads(t *testing.T) {
	store := NewMemoryThreadStore(10, time.Hour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		require.NoError(t, store.Append(ctx, fmt.Sprintf("old-%d", i), "", pair(0, "q", "a")...))
	}

	now = now.Add(48 * time.Hour)
	for i := 0; i < 100; i++ {
		require.NoError(t, store.Append(ctx, fmt.Sprintf("new-%d", i), "", pair(0, "q", "a")...))
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.threads, 100)
	assert.NotContains(t, store.threads, "old-0")
}

func TestMemoryThreadStoreLoadReturnsCopy(t *testing.T) {
	store := NewMemoryThreadStore(10, time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "t1", "", pair(0, "q", "a")...))

	thread, _, _ := store.Load(ctx, "t1")
	thread.Messages[0].Content = "changed"

	again, _, _ := store.Load(ctx, "t1")
	assert.Equal(t, "q", again.Messages[0].Content)
}
