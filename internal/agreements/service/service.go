package service

import (
	"context"
	"time"

	"supply_portal_backend/internal/agreements/domain"
	"supply_portal_backend/internal/agreements/repository"
	"supply_portal_backend/internal/agreements/transport"
	"supply_portal_backend/internal/events"
	"supply_portal_backend/platform/apperr"
	"supply_portal_backend/platform/clock"

	"github.com/google/uuid"
)

// AgreementRepository is the persistence port the service needs.
type AgreementRepository interface {
	Create(ctx context.Context, ag *repository.Agreement) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Agreement, error)
	ListActive(ctx context.Context) ([]repository.Agreement, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status, updatedAt time.Time) error
}

// Service provides business logic for agreements.
type Service struct {
	repo     AgreementRepository
	eventBus events.Bus
	clk      clock.Clock
}

// New creates a new agreements service.
func New(repo AgreementRepository, eventBus events.Bus, clk clock.Clock) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		clk:      clk,
	}
}

// Create validates and persists a new agreement. Quantity bounds are checked
// here once; the stored agreement is the source of truth afterwards.
func (s *Service) Create(ctx context.Context, req transport.CreateAgreementRequest) (*transport.AgreementResponse, error) {
	if req.MinDailyQuantity > req.MaxDailyQuantity {
		return nil, apperr.Validation("minDailyQuantity must not exceed maxDailyQuantity")
	}
	if err := validateWeekdays(req.DeliveryWeekdays); err != nil {
		return nil, err
	}

	now := s.clk.Now()
	ag := &repository.Agreement{
		ID:                uuid.New(),
		ProviderID:        req.ProviderID,
		ConsumerID:        req.ConsumerID,
		PricePerUnitCents: req.PricePerUnitCents,
		MinDailyQuantity:  req.MinDailyQuantity,
		MaxDailyQuantity:  req.MaxDailyQuantity,
		NoticePeriodHours: req.NoticePeriodHours,
		DeliveryWeekdays:  req.DeliveryWeekdays,
		Status:            domain.StatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, ag); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.AgreementCreated{
			BaseEvent:         events.NewBaseEvent(),
			AgreementID:       ag.ID,
			ProviderID:        ag.ProviderID,
			ConsumerID:        ag.ConsumerID,
			MinDailyQuantity:  ag.MinDailyQuantity,
			MaxDailyQuantity:  ag.MaxDailyQuantity,
			NoticePeriodHours: ag.NoticePeriodHours,
		})
	}

	resp := toResponse(ag)
	return &resp, nil
}

// GetByID returns a single agreement.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.AgreementResponse, error) {
	ag, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(ag)
	return &resp, nil
}

// ListActive returns all currently active agreements.
func (s *Service) ListActive(ctx context.Context) (*transport.AgreementListResponse, error) {
	items, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	resp := transport.AgreementListResponse{
		Items: make([]transport.AgreementResponse, 0, len(items)),
		Total: len(items),
	}
	for i := range items {
		resp.Items = append(resp.Items, toResponse(&items[i]))
	}
	return &resp, nil
}

// Pause pauses an active agreement.
func (s *Service) Pause(ctx context.Context, id uuid.UUID) (*transport.AgreementResponse, error) {
	return s.transition(ctx, id, domain.ActionPause)
}

// Resume reactivates a paused agreement.
func (s *Service) Resume(ctx context.Context, id uuid.UUID) (*transport.AgreementResponse, error) {
	return s.transition(ctx, id, domain.ActionResume)
}

// Terminate ends an agreement permanently.
func (s *Service) Terminate(ctx context.Context, id uuid.UUID) (*transport.AgreementResponse, error) {
	return s.transition(ctx, id, domain.ActionTerminate)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, action domain.Action) (*transport.AgreementResponse, error) {
	ag, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := domain.NextStatus(ag.Status, action)
	if !ok {
		return nil, apperr.Validation(domain.InvalidReason(ag.Status, action))
	}

	now := s.clk.Now()
	if err := s.repo.UpdateStatus(ctx, ag.ID, ag.Status, next, now); err != nil {
		return nil, err
	}

	ag.Status = next
	ag.UpdatedAt = now
	s.publishTransition(ctx, ag.ID, action)

	resp := toResponse(ag)
	return &resp, nil
}

func (s *Service) publishTransition(ctx context.Context, id uuid.UUID, action domain.Action) {
	if s.eventBus == nil {
		return
	}

	switch action {
	case domain.ActionPause:
		s.eventBus.Publish(ctx, events.AgreementPaused{BaseEvent: events.NewBaseEvent(), AgreementID: id})
	case domain.ActionResume:
		s.eventBus.Publish(ctx, events.AgreementResumed{BaseEvent: events.NewBaseEvent(), AgreementID: id})
	case domain.ActionTerminate:
		s.eventBus.Publish(ctx, events.AgreementTerminated{BaseEvent: events.NewBaseEvent(), AgreementID: id})
	}
}

func validateWeekdays(weekdays []int) error {
	seen := make(map[int]bool, len(weekdays))
	for _, d := range weekdays {
		if d < 1 || d > 7 {
			return apperr.Validation("deliveryWeekdays must use ISO numbering 1-7")
		}
		if seen[d] {
			return apperr.Validation("deliveryWeekdays must not contain duplicates")
		}
		seen[d] = true
	}
	return nil
}

func toResponse(ag *repository.Agreement) transport.AgreementResponse {
	return transport.AgreementResponse{
		ID:                ag.ID,
		ProviderID:        ag.ProviderID,
		ConsumerID:        ag.ConsumerID,
		PricePerUnitCents: ag.PricePerUnitCents,
		MinDailyQuantity:  ag.MinDailyQuantity,
		MaxDailyQuantity:  ag.MaxDailyQuantity,
		NoticePeriodHours: ag.NoticePeriodHours,
		DeliveryWeekdays:  ag.DeliveryWeekdays,
		Status:            string(ag.Status),
		CreatedAt:         ag.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         ag.UpdatedAt.Format(time.RFC3339),
	}
}
