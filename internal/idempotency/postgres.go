package idempotency

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists processed operations in the processed_operations
// table. The primary key on (subject_id, operation_name) makes claims
// race-safe across instances.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) IsProcessed(ctx context.Context, subjectID uuid.UUID, operation string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM processed_operations
			WHERE subject_id = $1 AND operation_name = $2
		)`, subjectID, operation).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query processed operation: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) MarkProcessed(ctx context.Context, subjectID uuid.UUID, operation string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO processed_operations (subject_id, operation_name)
		 VALUES ($1, $2)
		 ON CONFLICT (subject_id, operation_name) DO NOTHING`,
		subjectID, operation)
	if err != nil {
		return false, fmt.Errorf("failed to record processed operation: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

var _ Store = (*PostgresStore)(nil)
