package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"supply_portal_backend/internal/agreements/domain"
	"supply_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Agreement represents the agreement database model.
type Agreement struct {
	ID                uuid.UUID     `db:"id"`
	ProviderID        uuid.UUID     `db:"provider_id"`
	ConsumerID        uuid.UUID     `db:"consumer_id"`
	PricePerUnitCents int           `db:"price_per_unit_cents"`
	MinDailyQuantity  int           `db:"min_daily_quantity"`
	MaxDailyQuantity  int           `db:"max_daily_quantity"`
	NoticePeriodHours int           `db:"notice_period_hours"`
	DeliveryWeekdays  []int         `db:"delivery_weekdays"`
	Status            domain.Status `db:"status"`
	CreatedAt         time.Time     `db:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at"`
}

// HasWeekday reports whether the agreement delivers on the given ISO weekday
// (Monday=1 … Sunday=7).
func (a *Agreement) HasWeekday(isoWeekday int) bool {
	for _, d := range a.DeliveryWeekdays {
		if d == isoWeekday {
			return true
		}
	}
	return false
}

const agreementNotFoundMsg = "agreement not found"

const agreementColumns = `id, provider_id, consumer_id, price_per_unit_cents, min_daily_quantity,
		max_daily_quantity, notice_period_hours, delivery_weekdays, status, created_at, updated_at`

// Repository provides database operations for agreements.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new agreements repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new agreement.
func (r *Repository) Create(ctx context.Context, ag *Agreement) error {
	query := `
		INSERT INTO agreements (
			id, provider_id, consumer_id, price_per_unit_cents, min_daily_quantity,
			max_daily_quantity, notice_period_hours, delivery_weekdays, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)`

	_, err := r.pool.Exec(ctx, query,
		ag.ID, ag.ProviderID, ag.ConsumerID, ag.PricePerUnitCents, ag.MinDailyQuantity,
		ag.MaxDailyQuantity, ag.NoticePeriodHours, ag.DeliveryWeekdays, string(ag.Status),
		ag.CreatedAt, ag.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create agreement: %w", err)
	}

	return nil
}

// GetByID retrieves an agreement by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM agreements WHERE id = $1`

	ag, err := scanAgreement(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(agreementNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get agreement: %w", err)
	}

	return ag, nil
}

// ListActive returns all agreements with ACTIVE status, oldest first.
func (r *Repository) ListActive(ctx context.Context) ([]Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM agreements WHERE status = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, string(domain.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("failed to list active agreements: %w", err)
	}
	defer rows.Close()

	var result []Agreement
	for rows.Next() {
		ag, err := scanAgreement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agreement: %w", err)
		}
		result = append(result, *ag)
	}

	return result, rows.Err()
}

// UpdateStatus moves an agreement from one status to another. The current
// status is part of the WHERE clause so a concurrent transition (or a
// terminated agreement) makes the update a no-op, reported as a conflict.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status, updatedAt time.Time) error {
	query := `UPDATE agreements SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	tag, err := r.pool.Exec(ctx, query, string(to), updatedAt, id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update agreement status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("agreement status changed concurrently")
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgreement(row rowScanner) (*Agreement, error) {
	var ag Agreement
	var status string
	err := row.Scan(
		&ag.ID, &ag.ProviderID, &ag.ConsumerID, &ag.PricePerUnitCents, &ag.MinDailyQuantity,
		&ag.MaxDailyQuantity, &ag.NoticePeriodHours, &ag.DeliveryWeekdays, &status,
		&ag.CreatedAt, &ag.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ag.Status = domain.Status(status)
	return &ag, nil
}
