package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"supply_portal_backend/internal/agreements/repository"
	deliverydomain "supply_portal_backend/internal/deliveries/domain"
	deliveryservice "supply_portal_backend/internal/deliveries/service"
	"supply_portal_backend/platform/clock"
	"supply_portal_backend/platform/logger"
)

type fakeLocker struct {
	held     map[string]bool
	acquired []string
	released []string
	err      error
}

func (f *fakeLocker) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.held[name] {
		return false, nil
	}
	f.acquired = append(f.acquired, name)
	err := fn(ctx)
	f.released = append(f.released, name)
	return true, err
}

type fakeLister struct {
	agreements []repository.Agreement
	err        error
}

func (f *fakeLister) ListActive(context.Context) ([]repository.Agreement, error) {
	return f.agreements, f.err
}

type generatorCall struct {
	agreementID uuid.UUID
	from, to    time.Time
}

type fakeGenerator struct {
	calls  []generatorCall
	errFor map[uuid.UUID]error
}

func (f *fakeGenerator) GenerateForAgreement(_ context.Context, agreementID uuid.UUID, from, to time.Time) ([]deliverydomain.Delivery, error) {
	f.calls = append(f.calls, generatorCall{agreementID: agreementID, from: from, to: to})
	if err := f.errFor[agreementID]; err != nil {
		return nil, err
	}
	return []deliverydomain.Delivery{{ID: uuid.New(), AgreementID: agreementID}}, nil
}

type fakeRunner struct {
	result *deliveryservice.RunResult
	err    error
	runs   int
}

func (f *fakeRunner) RunFallback(context.Context) (*deliveryservice.RunResult, error) {
	f.runs++
	return f.result, f.err
}

type summaryCall struct {
	to              string
	applied, failed int
}

type fakeSummarySender struct {
	calls []summaryCall
}

func (f *fakeSummarySender) SendAgreementCreatedEmail(context.Context, string, string) error {
	return nil
}

func (f *fakeSummarySender) SendFallbackSummaryEmail(_ context.Context, toEmail string, applied, failed int) error {
	f.calls = append(f.calls, summaryCall{to: toEmail, applied: applied, failed: failed})
	return nil
}

var testClock = clock.Fixed{T: time.Date(2026, time.March, 2, 8, 30, 0, 0, time.UTC)}

func activeAgreement() repository.Agreement {
	return repository.Agreement{ID: uuid.New()}
}

func TestGenerationJobCoversConfiguredWindow(t *testing.T) {
	lister := &fakeLister{agreements: []repository.Agreement{activeAgreement()}}
	gen := &fakeGenerator{}
	locker := &fakeLocker{}
	job := NewGenerationJob(lister, gen, locker, testClock, 7, logger.New("test"))

	if err := job.Run(context.Background(), 0); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(gen.calls) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.calls))
	}
	call := gen.calls[0]
	// A 7-day lookahead covers today through today+7 inclusive.
	wantFrom := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	if !call.from.Equal(wantFrom) {
		t.Fatalf("from = %v, want %v", call.from, wantFrom)
	}
	if !call.to.Equal(wantTo) {
		t.Fatalf("to = %v, want %v", call.to, wantTo)
	}
}

func TestGenerationJobWindowOverride(t *testing.T) {
	lister := &fakeLister{agreements: []repository.Agreement{activeAgreement()}}
	gen := &fakeGenerator{}
	job := NewGenerationJob(lister, gen, &fakeLocker{}, testClock, 7, logger.New("test"))

	if err := job.Run(context.Background(), 1); err != nil {
		t.Fatalf("run: %v", err)
	}

	call := gen.calls[0]
	if want := call.from.AddDate(0, 0, 1); !call.to.Equal(want) {
		t.Fatalf("one-day lookahead should end at from+1, got %v .. %v", call.from, call.to)
	}
}

func TestGenerationJobProcessesAgreementsInOrder(t *testing.T) {
	agreements := []repository.Agreement{
		activeAgreement(), activeAgreement(), activeAgreement(),
		activeAgreement(), activeAgreement(), activeAgreement(),
	}
	lister := &fakeLister{agreements: agreements}
	gen := &fakeGenerator{errFor: map[uuid.UUID]error{agreements[2].ID: errors.New("insert failed")}}
	job := NewGenerationJob(lister, gen, &fakeLocker{}, testClock, 7, logger.New("test"))

	if err := job.Run(context.Background(), 0); err == nil {
		t.Fatal("expected aggregated error")
	}

	// Every agreement is visited exactly once, in the order the listing
	// returned them, even when one of them fails.
	if len(gen.calls) != len(agreements) {
		t.Fatalf("generator called %d times, want %d", len(gen.calls), len(agreements))
	}
	for i, call := range gen.calls {
		if call.agreementID != agreements[i].ID {
			t.Fatalf("call %d processed agreement %s, want %s", i, call.agreementID, agreements[i].ID)
		}
	}
}

func TestGenerationJobSkipsWhenLockHeld(t *testing.T) {
	lister := &fakeLister{agreements: []repository.Agreement{activeAgreement()}}
	gen := &fakeGenerator{}
	locker := &fakeLocker{held: map[string]bool{LockGenerateDeliveries: true}}
	job := NewGenerationJob(lister, gen, locker, testClock, 7, logger.New("test"))

	if err := job.Run(context.Background(), 0); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(gen.calls) != 0 {
		t.Fatalf("generator called %d times while lock held, want 0", len(gen.calls))
	}
}

func TestGenerationJobIsolatesPerAgreementFailures(t *testing.T) {
	bad := activeAgreement()
	good := activeAgreement()
	lister := &fakeLister{agreements: []repository.Agreement{bad, good}}
	gen := &fakeGenerator{errFor: map[uuid.UUID]error{bad.ID: errors.New("insert failed")}}
	locker := &fakeLocker{}
	job := NewGenerationJob(lister, gen, locker, testClock, 7, logger.New("test"))

	err := job.Run(context.Background(), 0)
	if err == nil {
		t.Fatal("expected aggregated error")
	}

	// The failing agreement does not stop the run for the others.
	if len(gen.calls) != 2 {
		t.Fatalf("generator called %d times, want 2", len(gen.calls))
	}
	// The lock is released even when the run errors.
	if len(locker.released) != 1 {
		t.Fatalf("lock released %d times, want 1", len(locker.released))
	}
}

func TestGenerationJobPropagatesLockerError(t *testing.T) {
	lockErr := errors.New("pool exhausted")
	job := NewGenerationJob(&fakeLister{}, &fakeGenerator{}, &fakeLocker{err: lockErr}, testClock, 7, logger.New("test"))

	if err := job.Run(context.Background(), 0); !errors.Is(err, lockErr) {
		t.Fatalf("err = %v, want %v", err, lockErr)
	}
}

func TestFallbackJobRunsUnderLock(t *testing.T) {
	runner := &fakeRunner{result: &deliveryservice.RunResult{Processed: 3, Applied: 2, Skipped: 1}}
	locker := &fakeLocker{}
	sender := &fakeSummarySender{}
	job := NewFallbackJob(runner, locker, testClock, sender, "ops@example.com", logger.New("test"))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if runner.runs != 1 {
		t.Fatalf("runner ran %d times, want 1", runner.runs)
	}
	if len(locker.acquired) != 1 || locker.acquired[0] != LockApplyFallback {
		t.Fatalf("acquired = %v, want [%s]", locker.acquired, LockApplyFallback)
	}
	if len(sender.calls) != 1 {
		t.Fatalf("summary emails = %d, want 1", len(sender.calls))
	}
	if sender.calls[0].applied != 2 || sender.calls[0].failed != 0 {
		t.Fatalf("summary = %+v, want applied=2 failed=0", sender.calls[0])
	}
}

func TestFallbackJobSkipsWhenLockHeld(t *testing.T) {
	runner := &fakeRunner{result: &deliveryservice.RunResult{}}
	locker := &fakeLocker{held: map[string]bool{LockApplyFallback: true}}
	job := NewFallbackJob(runner, locker, testClock, nil, "", logger.New("test"))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if runner.runs != 0 {
		t.Fatalf("runner ran %d times while lock held, want 0", runner.runs)
	}
}

func TestFallbackJobNoSummaryWhenNothingApplied(t *testing.T) {
	runner := &fakeRunner{result: &deliveryservice.RunResult{Processed: 2, Skipped: 2}}
	sender := &fakeSummarySender{}
	job := NewFallbackJob(runner, &fakeLocker{}, testClock, sender, "ops@example.com", logger.New("test"))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sender.calls) != 0 {
		t.Fatalf("summary emails = %d, want 0", len(sender.calls))
	}
}

func TestFallbackJobReturnsRunnerError(t *testing.T) {
	runErr := errors.New("selection query failed")
	runner := &fakeRunner{err: runErr}
	locker := &fakeLocker{}
	job := NewFallbackJob(runner, locker, testClock, nil, "", logger.New("test"))

	if err := job.Run(context.Background()); !errors.Is(err, runErr) {
		t.Fatalf("err = %v, want %v", err, runErr)
	}
	if len(locker.released) != 1 {
		t.Fatalf("lock released %d times, want 1", len(locker.released))
	}
}

func TestJobInterfacesSatisfiedByServices(t *testing.T) {
	// Compile-time wiring checks.
	var _ AgreementLister = (*repository.Repository)(nil)
	var _ DeliveryGenerator = (*deliveryservice.Service)(nil)
	var _ FallbackRunner = (*deliveryservice.Service)(nil)
}
