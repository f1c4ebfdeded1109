package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/snapcook/backend/internal/service"
	"github.com/pageza/snapcook/backend/internal/testdb"
	"github.com/pageza/snapcook/backend/internal/types"
)

func TestRedisThreadStore(t *testing.T) {
	client := testdb.SetupRedis(t)
	store := service.NewRedisThreadStore(client, 4, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	_, found, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, found)

	msg := func(pos int, role types.Role) types.Message {
		return types.Message{Role: role, Content: string(role), Position: pos, CreatedAt: time.Now().UTC()}
	}

	for i := 0; i < 3; i++ {
		recipeContext := "Title: Soup"
		if i > 0 {
			recipeContext = "Title: Ignored"
		}
		require.NoError(t, store.Append(ctx, "t1", recipeContext, msg(2*i, types.RoleUser), msg(2*i+1, types.RoleAssistant)))
	}

	thread, found, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Title: Soup", thread.RecipeContext)
	require.Len(t, thread.Messages, 4)
	assert.Equal(t, 2, thread.Messages[0].Position)
	assert.Equal(t, types.RoleUser, thread.Messages[0].Role)
	assert.Equal(t, 6, thread.NextPosition())

	ttl, err := client.TTL(ctx, "thread:t1:messages").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)
}

func TestRedisThreadStoreWithoutContext(t *testing.T) {
	client := testdb.SetupRedis(t)
	store := service.NewRedisThreadStore(client, 50, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "t2", "", types.Message{Role: types.RoleUser, Content: "hi"}))

	thread, found, err := store.Load(ctx, "t2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, thread.RecipeContext)
	assert.Len(t, thread.Messages, 1)
}
