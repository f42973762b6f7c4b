package tx

import "context"

// Locker grants an exclusive lock on a key, usually across processes.
// The returned release must be called once the guarded work is done.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(context.Context) error, err error)
}
