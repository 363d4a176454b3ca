package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"supply_portal_backend/internal/agreements/domain"
	"supply_portal_backend/internal/agreements/repository"
	"supply_portal_backend/internal/agreements/transport"
	"supply_portal_backend/internal/events"
	"supply_portal_backend/platform/apperr"
	"supply_portal_backend/platform/clock"
)

var _ AgreementRepository = (*repository.Repository)(nil)

type fakeRepo struct {
	agreements map[uuid.UUID]*repository.Agreement
	createErr  error
	updateErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{agreements: make(map[uuid.UUID]*repository.Agreement)}
}

func (f *fakeRepo) Create(_ context.Context, ag *repository.Agreement) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *ag
	f.agreements[ag.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*repository.Agreement, error) {
	ag, ok := f.agreements[id]
	if !ok {
		return nil, apperr.NotFound("agreement not found")
	}
	cp := *ag
	return &cp, nil
}

func (f *fakeRepo) ListActive(context.Context) ([]repository.Agreement, error) {
	var out []repository.Agreement
	for _, ag := range f.agreements {
		if ag.Status == domain.StatusActive {
			out = append(out, *ag)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.Status, updatedAt time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	ag, ok := f.agreements[id]
	if !ok || ag.Status != from {
		return apperr.Conflict("agreement status changed concurrently")
	}
	ag.Status = to
	ag.UpdatedAt = updatedAt
	return nil
}

type recordingBus struct {
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.events = append(b.events, e)
}

func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.events = append(b.events, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

var testClock = clock.Fixed{T: time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)}

func validCreateRequest() transport.CreateAgreementRequest {
	return transport.CreateAgreementRequest{
		ProviderID:        uuid.New(),
		ConsumerID:        uuid.New(),
		PricePerUnitCents: 250,
		MinDailyQuantity:  15,
		MaxDailyQuantity:  100,
		NoticePeriodHours: 24,
		DeliveryWeekdays:  []int{1, 3, 5},
	}
}

func TestCreateStartsActiveAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := New(repo, bus, testClock)

	resp, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if resp.Status != string(domain.StatusActive) {
		t.Fatalf("status = %s, want %s", resp.Status, domain.StatusActive)
	}
	if len(bus.events) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.events))
	}
	if bus.events[0].EventName() != "agreements.created" {
		t.Fatalf("event = %s, want agreements.created", bus.events[0].EventName())
	}
}

func TestCreateRejectsInvertedBounds(t *testing.T) {
	svc := New(newFakeRepo(), nil, testClock)

	req := validCreateRequest()
	req.MinDailyQuantity = 50
	req.MaxDailyQuantity = 10

	_, err := svc.Create(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateRejectsBadWeekdays(t *testing.T) {
	svc := New(newFakeRepo(), nil, testClock)

	cases := []struct {
		name     string
		weekdays []int
		wantMsg  string
	}{
		{"zero", []int{0, 1}, "ISO numbering"},
		{"eight", []int{1, 8}, "ISO numbering"},
		{"duplicate", []int{2, 2}, "duplicates"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			req.DeliveryWeekdays = tc.weekdays

			_, err := svc.Create(context.Background(), req)
			if apperr.GetKind(err) != apperr.KindValidation {
				t.Fatalf("err = %v, want validation error", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("message %q does not mention %q", err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestPauseResumeTerminateLifecycle(t *testing.T) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := New(repo, bus, testClock)

	created, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created.ID

	paused, err := svc.Pause(context.Background(), id)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if paused.Status != string(domain.StatusPaused) {
		t.Fatalf("status after pause = %s", paused.Status)
	}

	resumed, err := svc.Resume(context.Background(), id)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Status != string(domain.StatusActive) {
		t.Fatalf("status after resume = %s", resumed.Status)
	}

	terminated, err := svc.Terminate(context.Background(), id)
	if err != nil {
		t.Fatalf("terminate: %v", err)
	}
	if terminated.Status != string(domain.StatusTerminated) {
		t.Fatalf("status after terminate = %s", terminated.Status)
	}

	wantEvents := []string{
		"agreements.created",
		"agreements.paused",
		"agreements.resumed",
		"agreements.terminated",
	}
	if len(bus.events) != len(wantEvents) {
		t.Fatalf("published %d events, want %d", len(bus.events), len(wantEvents))
	}
	for i, name := range wantEvents {
		if bus.events[i].EventName() != name {
			t.Fatalf("event[%d] = %s, want %s", i, bus.events[i].EventName(), name)
		}
	}
}

func TestTerminatedIsAbsorbing(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, nil, testClock)

	created, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Terminate(context.Background(), created.ID); err != nil {
		t.Fatalf("terminate: %v", err)
	}

	for _, op := range []func(context.Context, uuid.UUID) (*transport.AgreementResponse, error){
		svc.Pause, svc.Resume, svc.Terminate,
	} {
		if _, err := op(context.Background(), created.ID); apperr.GetKind(err) != apperr.KindValidation {
			t.Fatalf("err = %v, want validation error on terminated agreement", err)
		}
	}
}

func TestPauseIdempotencyRejected(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, nil, testClock)

	created, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Pause(context.Background(), created.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}

	_, err = svc.Pause(context.Background(), created.ID)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
	if !strings.Contains(err.Error(), "already paused") {
		t.Fatalf("message = %q, want already paused", err.Error())
	}
}

func TestTransitionUnknownAgreement(t *testing.T) {
	svc := New(newFakeRepo(), nil, testClock)

	_, err := svc.Pause(context.Background(), uuid.New())
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestConcurrentTransitionSurfacesConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, nil, testClock)

	created, err := svc.Create(context.Background(), validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	repo.updateErr = apperr.Conflict("agreement status changed concurrently")
	_, err = svc.Pause(context.Background(), created.ID)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
}
