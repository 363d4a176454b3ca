package service

import (
	"context"
	"time"

	agreementdomain "supply_portal_backend/internal/agreements/domain"
	"supply_portal_backend/internal/deliveries/domain"
	"supply_portal_backend/platform/apperr"

	"github.com/google/uuid"
)

const msgAgreementNotActive = "agreement is not active"

// GenerateForAgreement creates deliveries for every date in [from, to] whose
// ISO weekday is in the agreement's weekday set. Insertion ignores dates that
// already have a delivery, so re-running the same window is a no-op for them;
// only rows actually created are returned. The database uniqueness constraint
// carries correctness, not application-level locking.
func (s *Service) GenerateForAgreement(ctx context.Context, agreementID uuid.UUID, from, to time.Time) ([]domain.Delivery, error) {
	ag, err := s.agreements.GetByID(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	if ag.Status != agreementdomain.StatusActive {
		return nil, apperr.Validation(msgAgreementNotActive)
	}

	dates := matchingDates(from, to, ag.DeliveryWeekdays)
	if len(dates) == 0 {
		return nil, nil
	}

	return s.repo.BulkInsert(ctx, ag.ID, dates, s.clk.Now())
}

// matchingDates walks every calendar date in [from, to] inclusive and keeps
// those whose ISO weekday (Monday=1 … Sunday=7) is in the weekday set.
func matchingDates(from, to time.Time, weekdays []int) []time.Time {
	wanted := make(map[int]bool, len(weekdays))
	for _, d := range weekdays {
		wanted[d] = true
	}

	var dates []time.Time
	for d := truncateToDay(from); !d.After(truncateToDay(to)); d = d.AddDate(0, 0, 1) {
		if wanted[isoWeekday(d)] {
			dates = append(dates, d)
		}
	}
	return dates
}

// isoWeekday maps Go's Sunday=0 weekday numbering to ISO Monday=1 … Sunday=7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
