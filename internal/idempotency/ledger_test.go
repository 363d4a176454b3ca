package idempotency

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestProcessOnceRunsFirstTimeOnly(t *testing.T) {
	ledger := New(NewMemoryStore())
	subject := uuid.New()

	calls := 0
	fn := func(context.Context) error {
		calls++
		return nil
	}

	ran, err := ledger.ProcessOnce(context.Background(), subject, "agreement.created.notify", fn)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if !ran {
		t.Fatal("expected first call to run")
	}

	ran, err = ledger.ProcessOnce(context.Background(), subject, "agreement.created.notify", fn)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if ran {
		t.Fatal("expected duplicate call to be skipped")
	}
	if calls != 1 {
		t.Fatalf("fn called %d times, want 1", calls)
	}
}

func TestProcessOnceSeparatesOperations(t *testing.T) {
	ledger := New(NewMemoryStore())
	subject := uuid.New()

	for _, op := range []string{"agreement.created.notify", "agreement.created.analytics"} {
		ran, err := ledger.ProcessOnce(context.Background(), subject, op, func(context.Context) error { return nil })
		if err != nil {
			t.Fatalf("%s: %v", op, err)
		}
		if !ran {
			t.Fatalf("%s: expected to run", op)
		}
	}
}

func TestProcessOnceSeparatesSubjects(t *testing.T) {
	ledger := New(NewMemoryStore())

	a, b := uuid.New(), uuid.New()
	for _, subject := range []uuid.UUID{a, b} {
		ran, err := ledger.ProcessOnce(context.Background(), subject, "agreement.created.notify", func(context.Context) error { return nil })
		if err != nil {
			t.Fatalf("subject %s: %v", subject, err)
		}
		if !ran {
			t.Fatalf("subject %s: expected to run", subject)
		}
	}
}

func TestProcessOnceKeepsClaimOnFailure(t *testing.T) {
	ledger := New(NewMemoryStore())
	subject := uuid.New()
	failure := errors.New("smtp unavailable")

	ran, err := ledger.ProcessOnce(context.Background(), subject, "agreement.created.notify", func(context.Context) error {
		return failure
	})
	if !ran {
		t.Fatal("expected fn to run")
	}
	if !errors.Is(err, failure) {
		t.Fatalf("err = %v, want %v", err, failure)
	}

	// The claim survives the failure, so a retry is skipped.
	ran, err = ledger.ProcessOnce(context.Background(), subject, "agreement.created.notify", func(context.Context) error {
		t.Fatal("fn should not run again")
		return nil
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if ran {
		t.Fatal("expected retry to be skipped")
	}
}

func TestIsProcessedReflectsClaims(t *testing.T) {
	ledger := New(NewMemoryStore())
	subject := uuid.New()

	seen, err := ledger.IsProcessed(context.Background(), subject, "deliveries.generate")
	if err != nil {
		t.Fatalf("IsProcessed: %v", err)
	}
	if seen {
		t.Fatal("expected unseen operation")
	}

	if _, err := ledger.ProcessOnce(context.Background(), subject, "deliveries.generate", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("ProcessOnce: %v", err)
	}

	seen, err = ledger.IsProcessed(context.Background(), subject, "deliveries.generate")
	if err != nil {
		t.Fatalf("IsProcessed: %v", err)
	}
	if !seen {
		t.Fatal("expected operation to be recorded")
	}
}
