package service

import (
	"context"
	"time"

	agreementrepo "supply_portal_backend/internal/agreements/repository"
	"supply_portal_backend/internal/deliveries/domain"
	"supply_portal_backend/internal/deliveries/repository"
	"supply_portal_backend/internal/events"
	"supply_portal_backend/platform/clock"

	"github.com/google/uuid"
)

// DeliveryRepository is the persistence port for deliveries.
type DeliveryRepository interface {
	FindByIDWithAgreement(ctx context.Context, id uuid.UUID) (*repository.Pair, error)
	FindEligibleForFallback(ctx context.Context, now time.Time) ([]repository.Pair, error)
	Save(ctx context.Context, d *domain.Delivery) error
	BulkInsert(ctx context.Context, agreementID uuid.UUID, dates []time.Time, createdAt time.Time) ([]domain.Delivery, error)
	ListByAgreement(ctx context.Context, agreementID uuid.UUID, from, to time.Time) ([]domain.Delivery, error)
}

// AgreementReader is the read-side port onto the agreements context.
type AgreementReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*agreementrepo.Agreement, error)
	ListActive(ctx context.Context) ([]agreementrepo.Agreement, error)
}

// Service provides business logic for deliveries.
type Service struct {
	repo       DeliveryRepository
	agreements AgreementReader
	eventBus   events.Bus
	clk        clock.Clock
}

// New creates a new deliveries service.
func New(repo DeliveryRepository, agreements AgreementReader, eventBus events.Bus, clk clock.Clock) *Service {
	return &Service{
		repo:       repo,
		agreements: agreements,
		eventBus:   eventBus,
		clk:        clk,
	}
}

// ConfirmExpected records the provider's expected quantity for a delivery.
// Bounds and notice period are read from the owning agreement at call time.
func (s *Service) ConfirmExpected(ctx context.Context, deliveryID uuid.UUID, quantity int) (*domain.Delivery, error) {
	pair, err := s.repo.FindByIDWithAgreement(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	terms := domain.AgreementTerms{
		MinDailyQuantity:  pair.Agreement.MinDailyQuantity,
		MaxDailyQuantity:  pair.Agreement.MaxDailyQuantity,
		NoticePeriodHours: pair.Agreement.NoticePeriodHours,
	}

	next, err := pair.Delivery.ConfirmExpected(quantity, terms, s.clk.Now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.DeliveryExpectedConfirmed{
			BaseEvent:        events.NewBaseEvent(),
			DeliveryID:       next.ID,
			AgreementID:      next.AgreementID,
			ServiceDate:      next.ServiceDate,
			ExpectedQuantity: quantity,
		})
	}

	return &next, nil
}

// ConfirmServed records the served quantity and finalizes the delivery.
func (s *Service) ConfirmServed(ctx context.Context, deliveryID uuid.UUID, quantity int) (*domain.Delivery, error) {
	pair, err := s.repo.FindByIDWithAgreement(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	next, err := pair.Delivery.ConfirmServed(quantity, s.clk.Now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.DeliveryServedConfirmed{
			BaseEvent:      events.NewBaseEvent(),
			DeliveryID:     next.ID,
			AgreementID:    next.AgreementID,
			ServiceDate:    next.ServiceDate,
			ServedQuantity: quantity,
		})
	}

	return &next, nil
}

// ListByAgreement returns deliveries for an agreement within a date range.
func (s *Service) ListByAgreement(ctx context.Context, agreementID uuid.UUID, from, to time.Time) ([]domain.Delivery, error) {
	if _, err := s.agreements.GetByID(ctx, agreementID); err != nil {
		return nil, err
	}
	return s.repo.ListByAgreement(ctx, agreementID, from, to)
}
