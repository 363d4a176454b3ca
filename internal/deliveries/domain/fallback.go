package domain

import "time"

// ConfirmationDeadline returns the last instant at which the expected quantity
// for a service date may still be confirmed: the notice period subtracted from
// the date's midnight UTC. Hours are subtracted from the timestamp itself, not
// truncated to calendar days.
func ConfirmationDeadline(serviceDate time.Time, noticePeriodHours int) time.Time {
	midnight := time.Date(serviceDate.Year(), serviceDate.Month(), serviceDate.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Add(-time.Duration(noticePeriodHours) * time.Hour)
}

// DeadlinePassed reports whether now is past the confirmation deadline.
// The boundary instant itself still permits confirmation.
func DeadlinePassed(serviceDate time.Time, noticePeriodHours int, now time.Time) bool {
	return now.After(ConfirmationDeadline(serviceDate, noticePeriodHours))
}

// EligibleForFallback is the single source of truth for the fallback rule:
// a delivery needs the fallback quantity iff no expected quantity was ever
// set, the delivery is not finalized, and the confirmation deadline passed.
//
// The repository's candidate query mirrors this predicate in SQL as a coarse
// pre-filter; ApplyFallback re-checks the entity-local part at mutation time
// to close the race window between selection and mutation.
func EligibleForFallback(expectedQuantity *int, status Status, serviceDate time.Time, noticePeriodHours int, now time.Time) bool {
	return expectedQuantity == nil &&
		status != StatusConfirmed &&
		DeadlinePassed(serviceDate, noticePeriodHours, now)
}
