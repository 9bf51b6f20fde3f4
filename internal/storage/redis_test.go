package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisKV struct {
	data    map[string]string
	lastTTL time.Duration
	err     error
}

func newMockRedisKV() *mockRedisKV {
	return &mockRedisKV{data: make(map[string]string)}
}

func (m *mockRedisKV) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	v, ok := m.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (m *mockRedisKV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	m.data[key] = value.(string)
	m.lastTTL = expiration
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisKV) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestRedisStore(t *testing.T) {
	t.Run("round trip with prefix", func(t *testing.T) {
		mock := newMockRedisKV()
		store := &redisStore{client: mock, prefix: "scoresight:kv:", timeout: time.Second}
		exerciseStore(t, store)

		if err := store.Set(context.Background(), "scoresight_token", "abc"); err != nil {
			t.Fatalf("set: %v", err)
		}
		if mock.data["scoresight:kv:scoresight_token"] != "abc" {
			t.Fatalf("expected prefixed key, got %+v", mock.data)
		}
		if mock.lastTTL != 0 {
			t.Fatalf("expected no expiration, got %v", mock.lastTTL)
		}
	})

	t.Run("redis error propagates", func(t *testing.T) {
		mock := newMockRedisKV()
		mock.err = errors.New("redis down")
		store := &redisStore{client: mock, prefix: "p:", timeout: time.Second}
		if _, err := store.Get(context.Background(), "k"); err == nil || errors.Is(err, ErrNotFound) {
			t.Fatalf("expected raw redis error, got %v", err)
		}
	})

	t.Run("nil client", func(t *testing.T) {
		if NewRedisStore(nil) != nil {
			t.Fatalf("expected nil store for nil client")
		}
	})
}
