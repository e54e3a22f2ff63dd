package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/ports"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "orderflow:lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another instance is left alone.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *goredis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *goredis.Cmd
}

// JobLock implements ports.JobLock with SET NX and a random owner token.
type JobLock struct {
	store lockStore
}

var _ ports.JobLock = (*JobLock)(nil)

func NewJobLock(store lockStore) (*JobLock, error) {
	if store == nil {
		return nil, errors.New("redis client required for job lock")
	}
	return &JobLock{store: store}, nil
}

func (l *JobLock) TryLock(
	ctx context.Context,
	key string,
	ttl time.Duration,
) (func(context.Context) error, bool, error) {
	if key == "" {
		return nil, false, errors.New("lock key is required")
	}
	if ttl <= 0 {
		return nil, false, fmt.Errorf("lock ttl must be positive, got %s", ttl)
	}

	fullKey := lockKeyPrefix + key
	token := uuid.NewString()
	acquired, err := l.store.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("setnx %s: %w", fullKey, err)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		err := l.store.Eval(ctx, releaseScript, []string{fullKey}, token).Err()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("release %s: %w", fullKey, err)
		}
		return nil
	}
	return release, true, nil
}
