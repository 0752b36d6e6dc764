package ports

import (
	"context"
	"time"
)

// DefaultLockTTL bounds how long a distributed session lock may be held
// before it expires on its own.
const DefaultLockTTL = 30 * time.Second

// UnlockFunc releases a lock acquired through DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes access to one session across replicas.
// The session manager takes this lock around every load-modify-save cycle.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired or ctx is done.
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
