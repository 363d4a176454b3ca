package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	agreementdomain "supply_portal_backend/internal/agreements/domain"
	agreementrepo "supply_portal_backend/internal/agreements/repository"
	"supply_portal_backend/internal/deliveries/domain"
	"supply_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const deliveryNotFoundMsg = "delivery not found"

const deliveryColumns = `d.id, d.agreement_id, d.service_date, d.expected_quantity, d.served_quantity,
		d.expected_confirmed_at, d.served_confirmed_at, d.status, d.created_at, d.updated_at`

const agreementColumns = `a.id, a.provider_id, a.consumer_id, a.price_per_unit_cents, a.min_daily_quantity,
		a.max_daily_quantity, a.notice_period_hours, a.delivery_weekdays, a.status, a.created_at, a.updated_at`

// Pair couples a delivery with its owning agreement, loaded together so the
// caller reads bounds and notice period from the agreement at operation time.
type Pair struct {
	Delivery  domain.Delivery
	Agreement agreementrepo.Agreement
}

// Repository provides database operations for deliveries.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new deliveries repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByIDWithAgreement loads a delivery together with its agreement.
func (r *Repository) FindByIDWithAgreement(ctx context.Context, id uuid.UUID) (*Pair, error) {
	query := `SELECT ` + deliveryColumns + `, ` + agreementColumns + `
		FROM deliveries d
		JOIN agreements a ON a.id = d.agreement_id
		WHERE d.id = $1`

	pair, err := scanPair(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(deliveryNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}

	return pair, nil
}

// FindEligibleForFallback selects deliveries whose confirmation deadline has
// passed without an expected quantity, on active agreements only. The WHERE
// clause is the coarse SQL mirror of domain.EligibleForFallback; the entity
// guard re-checks at mutation time. Ordered by service date then id so batch
// runs are deterministic.
func (r *Repository) FindEligibleForFallback(ctx context.Context, now time.Time) ([]Pair, error) {
	query := `SELECT ` + deliveryColumns + `, ` + agreementColumns + `
		FROM deliveries d
		JOIN agreements a ON a.id = d.agreement_id
		WHERE d.expected_quantity IS NULL
		  AND d.status <> $1
		  AND a.status = $2
		  AND $3 > (d.service_date::timestamptz - make_interval(hours => a.notice_period_hours))
		ORDER BY d.service_date, d.id`

	rows, err := r.pool.Query(ctx, query, string(domain.StatusConfirmed), string(agreementdomain.StatusActive), now)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible deliveries: %w", err)
	}
	defer rows.Close()

	var result []Pair
	for rows.Next() {
		pair, err := scanPair(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan eligible delivery: %w", err)
		}
		result = append(result, *pair)
	}

	return result, rows.Err()
}

// Save persists the mutable fields of a delivery.
func (r *Repository) Save(ctx context.Context, d *domain.Delivery) error {
	query := `UPDATE deliveries SET
			expected_quantity = $1,
			served_quantity = $2,
			expected_confirmed_at = $3,
			served_confirmed_at = $4,
			status = $5,
			updated_at = $6
		WHERE id = $7`

	tag, err := r.pool.Exec(ctx, query,
		d.ExpectedQuantity, d.ServedQuantity, d.ExpectedConfirmedAt, d.ServedConfirmedAt,
		string(d.Status), d.UpdatedAt, d.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save delivery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(deliveryNotFoundMsg)
	}

	return nil
}

// BulkInsert creates deliveries for the given dates, ignoring dates that
// already have one for the agreement. Returns only the rows actually created,
// which makes repeated generation over overlapping windows a no-op.
func (r *Repository) BulkInsert(ctx context.Context, agreementID uuid.UUID, dates []time.Time, createdAt time.Time) ([]domain.Delivery, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	query := `INSERT INTO deliveries (id, agreement_id, service_date, status, created_at, updated_at)
		SELECT gen_random_uuid(), $1, unnest($2::date[]), $3, $4, $4
		ON CONFLICT (agreement_id, service_date) DO NOTHING
		RETURNING id, agreement_id, service_date, expected_quantity, served_quantity,
			expected_confirmed_at, served_confirmed_at, status, created_at, updated_at`

	rows, err := r.pool.Query(ctx, query, agreementID, dates, string(domain.StatusPending), createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert deliveries: %w", err)
	}
	defer rows.Close()

	var created []domain.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan created delivery: %w", err)
		}
		created = append(created, *d)
	}

	return created, rows.Err()
}

// ListByAgreement returns all deliveries for an agreement within a date range.
func (r *Repository) ListByAgreement(ctx context.Context, agreementID uuid.UUID, from, to time.Time) ([]domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries d
		WHERE d.agreement_id = $1 AND d.service_date BETWEEN $2 AND $3
		ORDER BY d.service_date`

	rows, err := r.pool.Query(ctx, query, agreementID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	defer rows.Close()

	var result []domain.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		result = append(result, *d)
	}

	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDelivery(row rowScanner) (*domain.Delivery, error) {
	var d domain.Delivery
	var status string
	err := row.Scan(
		&d.ID, &d.AgreementID, &d.ServiceDate, &d.ExpectedQuantity, &d.ServedQuantity,
		&d.ExpectedConfirmedAt, &d.ServedConfirmedAt, &status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Status = domain.Status(status)
	return &d, nil
}

func scanPair(row rowScanner) (*Pair, error) {
	var p Pair
	var deliveryStatus, agreementStatus string
	err := row.Scan(
		&p.Delivery.ID, &p.Delivery.AgreementID, &p.Delivery.ServiceDate,
		&p.Delivery.ExpectedQuantity, &p.Delivery.ServedQuantity,
		&p.Delivery.ExpectedConfirmedAt, &p.Delivery.ServedConfirmedAt,
		&deliveryStatus, &p.Delivery.CreatedAt, &p.Delivery.UpdatedAt,
		&p.Agreement.ID, &p.Agreement.ProviderID, &p.Agreement.ConsumerID,
		&p.Agreement.PricePerUnitCents, &p.Agreement.MinDailyQuantity,
		&p.Agreement.MaxDailyQuantity, &p.Agreement.NoticePeriodHours,
		&p.Agreement.DeliveryWeekdays, &agreementStatus,
		&p.Agreement.CreatedAt, &p.Agreement.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Delivery.Status = domain.Status(deliveryStatus)
	p.Agreement.Status = agreementdomain.Status(agreementStatus)
	return &p, nil
}
