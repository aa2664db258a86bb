package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates diagram access across replicas. The
// session manager takes the lock around every engine mutation so two
// instances never interleave edits to the same diagram.
type DistributedLocker interface {
	// Lock acquires a distributed lock for the given key (a diagram ID).
	// It blocks until the lock is acquired, the context is canceled, or
	// the TTL expires. The returned UnlockFunc MUST be called to release
	// the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
