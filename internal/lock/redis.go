package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLock is an advisory lock held as a single key with a TTL. The value
// is a per-acquisition token so only the holder can release it.
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	token  string
}

func NewRedisLock(redisURL, key string, ttl time.Duration) (*RedisLock, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return &RedisLock{
		client: redis.NewClient(opt),
		key:    key,
		ttl:    ttl,
	}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) error {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
	}
	if !ok {
		return ErrLocked
	}
	l.token = token
	logger.Debug.Printf("Acquired lock %s (token %s)", l.key, token)
	return nil
}

func (l *RedisLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	deleted, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.key, err)
	}
	if deleted == 0 {
		logger.Info.Printf("Lock %s expired or was taken over before release", l.key)
	}
	l.token = ""
	return nil
}

func (l *RedisLock) Close() error {
	return l.client.Close()
}
