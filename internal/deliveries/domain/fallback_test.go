package domain

import (
	"testing"
	"time"
)

func TestConfirmationDeadlineSubtractsHoursFromMidnightUTC(t *testing.T) {
	serviceDate := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	got := ConfirmationDeadline(serviceDate, 24)
	want := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// 36 hours lands mid-day, not truncated to a calendar day.
	got = ConfirmationDeadline(serviceDate, 36)
	want = time.Date(2026, time.March, 8, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestConfirmationDeadlineNormalizesTimeOfDay(t *testing.T) {
	// Dates carrying a stray time-of-day are treated date-only.
	withTime := time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)
	plain := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	if !ConfirmationDeadline(withTime, 24).Equal(ConfirmationDeadline(plain, 24)) {
		t.Fatal("deadline must not depend on the service date's time-of-day")
	}
}

func TestEligibleForFallbackBoundary(t *testing.T) {
	serviceDate := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	deadline := ConfirmationDeadline(serviceDate, 24)

	if EligibleForFallback(nil, StatusPending, serviceDate, 24, deadline) {
		t.Fatal("not eligible at the exact deadline instant")
	}
	if !EligibleForFallback(nil, StatusPending, serviceDate, 24, deadline.Add(time.Second)) {
		t.Fatal("eligible one second after the deadline")
	}
}

func TestEligibleForFallbackRequiresUnsetQuantityAndPendingStatus(t *testing.T) {
	serviceDate := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	wellPast := serviceDate.Add(48 * time.Hour)
	qty := 20

	if EligibleForFallback(&qty, StatusPending, serviceDate, 24, wellPast) {
		t.Fatal("not eligible once an expected quantity exists")
	}
	if EligibleForFallback(nil, StatusConfirmed, serviceDate, 24, wellPast) {
		t.Fatal("not eligible once confirmed")
	}
	if !EligibleForFallback(nil, StatusPending, serviceDate, 24, wellPast) {
		t.Fatal("eligible when unset, pending, and past deadline")
	}
}

func TestEligibilityAgreesWithApplyFallbackGuard(t *testing.T) {
	// The entity guard is the authoritative second evaluation of the rule:
	// whenever the predicate says eligible, ApplyFallback must apply.
	serviceDate := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	now := serviceDate.Add(24 * time.Hour)
	qty := 20

	cases := []struct {
		expected *int
		status   Status
	}{
		{nil, StatusPending},
		{&qty, StatusPending},
		{nil, StatusConfirmed},
		{&qty, StatusConfirmed},
	}

	for _, tc := range cases {
		eligible := EligibleForFallback(tc.expected, tc.status, serviceDate, 24, now)

		d := Delivery{ServiceDate: serviceDate, ExpectedQuantity: tc.expected, Status: tc.status}
		_, applied := d.ApplyFallback(10, now)

		if eligible != applied {
			t.Fatalf("expected=%v status=%s: predicate says %v but guard says %v",
				tc.expected, tc.status, eligible, applied)
		}
	}
}
