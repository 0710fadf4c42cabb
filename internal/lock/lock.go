package lock

import (
	"context"
	"errors"
)

// ErrLocked is returned by Acquire when another run holds the lock.
var ErrLocked = errors.New("store is locked by another run")

// Lock grants a single run exclusive write access to the roster store.
type Lock interface {
	Acquire(ctx context.Context) error
	Release(ctx context.Context) error
}
