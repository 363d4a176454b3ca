// Package pglock provides cross-instance mutual exclusion backed by Postgres
// session-scoped advisory locks. Multiple service instances share one database;
// a named lock lets exactly one of them run a given scheduler job body at a time.
package pglock

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Locker runs a function under a named cross-instance lock.
type Locker interface {
	// WithLock attempts to acquire the named lock without waiting. When the
	// lock is held elsewhere it returns acquired=false and never runs fn.
	// When acquired, fn runs and the lock is released on every exit path;
	// an error from fn propagates after release.
	WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) (acquired bool, err error)
}

// AdvisoryLocker implements Locker with pg_try_advisory_lock. The lock is
// session-scoped, so acquisition and release must happen on the same
// connection; a connection is pinned from the pool for the duration of fn.
type AdvisoryLocker struct {
	pool *pgxpool.Pool
}

// New creates an AdvisoryLocker on the given pool.
func New(pool *pgxpool.Pool) *AdvisoryLocker {
	return &AdvisoryLocker{pool: pool}
}

// LockKey maps a lock name to the bigint key space Postgres advisory locks use.
func LockKey(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}

// WithLock implements Locker.
func (l *AdvisoryLocker) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) (bool, error) {
	key := LockKey(name)

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection for lock %q: %w", name, err)
	}
	defer conn.Release()

	var acquired bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&acquired); err != nil {
		return false, fmt.Errorf("try advisory lock %q: %w", name, err)
	}
	if !acquired {
		return false, nil
	}

	defer func() {
		// Unlock on the same session. If the connection died the session lock
		// is gone with it, so a failed unlock is not escalated over fn's error.
		var unlocked bool
		_ = conn.QueryRow(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, key).Scan(&unlocked)
	}()

	return true, fn(ctx)
}
