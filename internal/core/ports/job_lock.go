package ports

import (
	"context"
	"time"
)

// JobLock provides a cluster-wide mutex for scheduled jobs.
type JobLock interface {
	// TryLock acquires key for ttl. acquired is false when another holder owns
	// the key. release is only set when the lock was acquired.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}
