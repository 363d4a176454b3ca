// Package domain provides core business rules for the deliveries bounded context.
//
// A Delivery tracks the expected and served quantity for one agreement on one
// service date. Quantity bounds and the notice period always come from the
// owning agreement at operation time; the delivery never caches them.
package domain

import (
	"time"

	"supply_portal_backend/platform/apperr"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a delivery.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
)

// AgreementTerms carries the bounds a delivery operation reads from its
// owning agreement.
type AgreementTerms struct {
	MinDailyQuantity  int
	MaxDailyQuantity  int
	NoticePeriodHours int
}

// Error messages for the delivery guards. Each failure condition is distinct
// so callers can render an actionable message.
const (
	MsgAlreadyConfirmed     = "delivery already confirmed"
	MsgExpectedAlreadySet   = "expected quantity already set"
	MsgNoticePeriodExceeded = "notice period exceeded"
	MsgQuantityOutOfRange   = "quantity outside agreement bounds"
	MsgNegativeServed       = "served quantity must not be negative"
)

// Delivery is one scheduled, date-bound unit of quantity tracking under an
// agreement. Operations validate and return the next state instead of
// mutating in place.
type Delivery struct {
	ID                  uuid.UUID `db:"id"`
	AgreementID         uuid.UUID `db:"agreement_id"`
	ServiceDate         time.Time `db:"service_date"`
	ExpectedQuantity    *int      `db:"expected_quantity"`
	ServedQuantity      *int      `db:"served_quantity"`
	ExpectedConfirmedAt *time.Time `db:"expected_confirmed_at"`
	ServedConfirmedAt   *time.Time `db:"served_confirmed_at"`
	Status              Status    `db:"status"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

// ConfirmExpected records the provider's expected quantity for the service
// date. Guards run in order: finalized, immutability marker, notice-period
// deadline, agreement bounds. The first violated guard wins.
func (d Delivery) ConfirmExpected(quantity int, terms AgreementTerms, now time.Time) (Delivery, error) {
	if d.Status == StatusConfirmed {
		return d, apperr.Conflict(MsgAlreadyConfirmed)
	}
	if d.ExpectedConfirmedAt != nil {
		return d, apperr.Conflict(MsgExpectedAlreadySet)
	}
	if DeadlinePassed(d.ServiceDate, terms.NoticePeriodHours, now) {
		return d, apperr.Validation(MsgNoticePeriodExceeded)
	}
	if quantity < terms.MinDailyQuantity || quantity > terms.MaxDailyQuantity {
		return d, apperr.Validation(MsgQuantityOutOfRange)
	}

	d.ExpectedQuantity = &quantity
	d.ExpectedConfirmedAt = &now
	d.UpdatedAt = now
	return d, nil
}

// ConfirmServed records the quantity actually served and finalizes the
// delivery. PENDING moves to CONFIRMED exactly once; there is no way back.
func (d Delivery) ConfirmServed(quantity int, now time.Time) (Delivery, error) {
	if d.Status == StatusConfirmed {
		return d, apperr.Conflict(MsgAlreadyConfirmed)
	}
	if quantity < 0 {
		return d, apperr.Validation(MsgNegativeServed)
	}

	d.ServedQuantity = &quantity
	d.ServedConfirmedAt = &now
	d.Status = StatusConfirmed
	d.UpdatedAt = now
	return d, nil
}

// ApplyFallback substitutes the agreement minimum as the expected quantity.
// Returns applied=false without any change when the delivery is finalized or
// an expected quantity was already set. The delivery stays PENDING: fallback
// supplies a default expectation, it does not confirm service.
func (d Delivery) ApplyFallback(minQuantity int, now time.Time) (Delivery, bool) {
	if !d.NeedsFallback() {
		return d, false
	}

	d.ExpectedQuantity = &minQuantity
	d.ExpectedConfirmedAt = &now
	d.UpdatedAt = now
	return d, true
}

// NeedsFallback is the cheap entity-local pre-check: no expected quantity and
// not finalized. The deadline part of the rule lives in EligibleForFallback.
func (d Delivery) NeedsFallback() bool {
	return d.ExpectedQuantity == nil && d.Status == StatusPending
}
