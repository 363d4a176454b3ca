package service

import (
	"context"
	"time"

	"supply_portal_backend/internal/events"

	"github.com/google/uuid"
)

// AppliedOutcome records one delivery the fallback batch filled in.
type AppliedOutcome struct {
	DeliveryID      uuid.UUID
	AgreementID     uuid.UUID
	ServiceDate     time.Time
	QuantityApplied int
}

// ItemError records one delivery the batch failed to persist.
type ItemError struct {
	DeliveryID uuid.UUID
	Message    string
}

// RunResult aggregates the outcome of one fallback batch run. It is not
// persisted; it only feeds the run's metrics record and logs.
type RunResult struct {
	Processed int
	Applied   int
	Skipped   int
	Outcomes  []AppliedOutcome
	Errors    []ItemError
}

// RunFallback applies the agreement minimum to every delivery whose
// confirmation deadline passed unconfirmed. Items are processed strictly in
// the order the selection query returns them. A persistence failure on one
// item is recorded and the batch moves on; it never aborts the run. Items the
// entity guard rejects (confirmed or already set since selection) count as
// skipped without a persistence call.
func (s *Service) RunFallback(ctx context.Context) (*RunResult, error) {
	now := s.clk.Now()

	pairs, err := s.repo.FindEligibleForFallback(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &RunResult{}
	for i := range pairs {
		pair := &pairs[i]
		result.Processed++

		next, applied := pair.Delivery.ApplyFallback(pair.Agreement.MinDailyQuantity, now)
		if !applied {
			result.Skipped++
			continue
		}

		if err := s.repo.Save(ctx, &next); err != nil {
			result.Errors = append(result.Errors, ItemError{
				DeliveryID: pair.Delivery.ID,
				Message:    err.Error(),
			})
			continue
		}

		result.Applied++
		result.Outcomes = append(result.Outcomes, AppliedOutcome{
			DeliveryID:      next.ID,
			AgreementID:     next.AgreementID,
			ServiceDate:     next.ServiceDate,
			QuantityApplied: pair.Agreement.MinDailyQuantity,
		})

		if s.eventBus != nil {
			s.eventBus.Publish(ctx, events.DeliveryFallbackApplied{
				BaseEvent:       events.NewBaseEvent(),
				DeliveryID:      next.ID,
				AgreementID:     next.AgreementID,
				ServiceDate:     next.ServiceDate,
				QuantityApplied: pair.Agreement.MinDailyQuantity,
			})
		}
	}

	return result, nil
}
