package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockTTL       = 10 * time.Second
	retryInterval = 25 * time.Millisecond
)

// unlockScript deletes a lock key only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker backed by Redis SETNX, for deployments running
// more than one API instance against the same store.
type RedisLocker struct {
	client *redis.Client
	prefix string
}

type RedisConfig struct {
	URL    string
	Prefix string
}

func NewRedisLocker(cfg RedisConfig) (*RedisLocker, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "lock"
	}
	return &RedisLocker{client: client, prefix: prefix}, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	sorted := dedupe(keys)
	token := uuid.New().String()

	held := make([]string, 0, len(sorted))
	releaseHeld := func() {
		for i := len(held) - 1; i >= 0; i-- {
			unlockScript.Run(context.Background(), l.client, []string{held[i]}, token)
		}
	}

	for _, key := range sorted {
		name := l.prefix + ":" + key
		if err := l.acquireOne(ctx, name, token); err != nil {
			releaseHeld()
			return nil, err
		}
		held = append(held, name)
	}

	return releaseHeld, nil
}

func (l *RedisLocker) acquireOne(ctx context.Context, name, token string) error {
	for {
		ok, err := l.client.SetNX(ctx, name, token, lockTTL).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire lock %s: %w", name, err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}
