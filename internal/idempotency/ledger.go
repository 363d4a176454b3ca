// Package idempotency provides an at-most-once execution ledger keyed by
// subject and operation name. Consumers wrap side effects in ProcessOnce
// so that retried events do not repeat them.
package idempotency

import (
	"context"

	"github.com/google/uuid"
)

// Store persists which (subject, operation) pairs have been processed.
type Store interface {
	// IsProcessed reports whether the operation was already recorded.
	IsProcessed(ctx context.Context, subjectID uuid.UUID, operation string) (bool, error)

	// MarkProcessed records the operation and reports whether this call
	// was the first to do so.
	MarkProcessed(ctx context.Context, subjectID uuid.UUID, operation string) (bool, error)
}

// Ledger coordinates idempotent execution of side effects.
type Ledger struct {
	store Store
}

// New creates a ledger backed by the given store.
func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// IsProcessed reports whether the operation already ran for the subject.
func (l *Ledger) IsProcessed(ctx context.Context, subjectID uuid.UUID, operation string) (bool, error) {
	return l.store.IsProcessed(ctx, subjectID, operation)
}

// ProcessOnce runs fn at most once per (subject, operation) pair.
//
// The pair is claimed before fn runs rather than recorded after it
// succeeds. Claim-first means two instances racing on the same event
// cannot both execute fn, at the cost that a failed fn is never retried
// on redelivery: the claim is kept, and retrying the operation requires
// clearing the record out of band. Recording on success would allow
// retries but would let concurrent duplicates both run the side effect.
func (l *Ledger) ProcessOnce(ctx context.Context, subjectID uuid.UUID, operation string, fn func(ctx context.Context) error) (bool, error) {
	first, err := l.store.MarkProcessed(ctx, subjectID, operation)
	if err != nil {
		return false, err
	}
	if !first {
		return false, nil
	}
	if err := fn(ctx); err != nil {
		return true, err
	}
	return true, nil
}
