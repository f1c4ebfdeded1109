package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/snapcook/backend/internal/types"
)

// RedisThreadStore keeps each thread in two keys: the recipe context string
// and a list of JSON encoded messages.
type RedisThreadStore struct {
	client *redis.Client
	limit  int
	ttl    time.Duration
}

// NewRedisThreadStore creates a Redis backed thread store.
func NewRedisThreadStore(client *redis.Client, limit int, ttl time.Duration) *RedisThreadStore {
	return &RedisThreadStore{client: client, limit: limit, ttl: ttl}
}

func contextKey(id string) string {
	return fmt.Sprintf("thread:%s:context", id)
}

func messagesKey(id string) string {
	return fmt.Sprintf("thread:%s:messages", id)
}

func (s *RedisThreadStore) Load(ctx context.Context, id string) (types.Thread, bool, error) {
	thread := types.Thread{ID: id}

	pipe := s.client.Pipeline()
	ctxCmd := pipe.Get(ctx, contextKey(id))
	msgsCmd := pipe.LRange(ctx, messagesKey(id), 0, -1)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return thread, false, fmt.Errorf("failed to load thread %s: %w", id, err)
	}

	recipeContext, err := ctxCmd.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return thread, false, fmt.Errorf("failed to load thread context: %w", err)
	}
	raw := msgsCmd.Val()
	if recipeContext == "" && len(raw) == 0 {
		return thread, false, nil
	}

	thread.RecipeContext = recipeContext
	thread.Messages = make([]types.Message, 0, len(raw))
	for _, item := range raw {
		var msg types.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return thread, false, fmt.Errorf("failed to decode thread message: %w", err)
		}
		thread.Messages = append(thread.Messages, msg)
	}
	return thread, true, nil
}

func (s *RedisThreadStore) Append(ctx context.Context, id, recipeContext string, msgs ...types.Message) error {
	values := make([]interface{}, 0, len(msgs))
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to encode thread message: %w", err)
		}
		values = append(values, data)
	}

	ck, mk := contextKey(id), messagesKey(id)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if recipeContext != "" {
			pipe.SetNX(ctx, ck, recipeContext, s.ttl)
		}
		if len(values) > 0 {
			pipe.RPush(ctx, mk, values...)
			if s.limit > 0 {
				pipe.LTrim(ctx, mk, int64(-s.limit), -1)
			}
		}
		pipe.Expire(ctx, ck, s.ttl)
		pipe.Expire(ctx, mk, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append to thread %s: %w", id, err)
	}
	return nil
}

func (s *RedisThreadStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
