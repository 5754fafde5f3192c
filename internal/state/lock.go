package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

const lockPollInterval = 100 * time.Millisecond

// Locker serializes mutating load-mutate-save cycles across concurrent pyvm
// invocations.
type Locker interface {
	Lock(ctx context.Context) (func(), error)
}

// Lock takes an exclusive advisory lock on the state file by creating a lock
// file next to it. It polls until the lock is free or the context is done.
// The returned function releases the lock.
func (f *FileStore) Lock(ctx context.Context) (func(), error) {
	if err := f.path.EnsureBase(); err != nil {
		return nil, err
	}

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		handle, err := os.OpenFile(f.path.LockFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_ = handle.Close()
			lockPath := f.path.LockFile
			return func() { _ = os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("acquire state lock: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire state lock: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
