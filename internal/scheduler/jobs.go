package scheduler

import (
	"context"
	"fmt"
	"time"

	"supply_portal_backend/internal/agreements/repository"
	deliverydomain "supply_portal_backend/internal/deliveries/domain"
	deliveryservice "supply_portal_backend/internal/deliveries/service"
	"supply_portal_backend/internal/email"
	"supply_portal_backend/platform/clock"
	"supply_portal_backend/platform/logger"
	"supply_portal_backend/platform/pglock"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Cross-instance lock names. Every instance competes for the same name,
// so at most one runs a given job at a time.
const (
	LockGenerateDeliveries = "deliveries:generate"
	LockApplyFallback      = "deliveries:fallback"
)

// AgreementLister lists the agreements a generation run covers.
type AgreementLister interface {
	ListActive(ctx context.Context) ([]repository.Agreement, error)
}

// DeliveryGenerator creates pending deliveries for one agreement.
type DeliveryGenerator interface {
	GenerateForAgreement(ctx context.Context, agreementID uuid.UUID, from, to time.Time) ([]deliverydomain.Delivery, error)
}

// FallbackRunner applies fallback quantities to overdue deliveries.
type FallbackRunner interface {
	RunFallback(ctx context.Context) (*deliveryservice.RunResult, error)
}

// GenerationJob creates upcoming deliveries for every active agreement.
// The run is wrapped in a cross-instance lock; an instance that loses the
// race skips the run instead of duplicating work.
type GenerationJob struct {
	agreements AgreementLister
	generator  DeliveryGenerator
	locker     pglock.Locker
	clk        clock.Clock
	windowDays int
	log        *logger.Logger
}

// NewGenerationJob creates a generation job with the given default window.
func NewGenerationJob(agreements AgreementLister, generator DeliveryGenerator, locker pglock.Locker, clk clock.Clock, windowDays int, log *logger.Logger) *GenerationJob {
	return &GenerationJob{
		agreements: agreements,
		generator:  generator,
		locker:     locker,
		clk:        clk,
		windowDays: windowDays,
		log:        log,
	}
}

// Run executes one generation pass. windowDays 0 uses the configured
// default. A failure on one agreement is recorded and the pass moves on
// to the next agreement.
func (j *GenerationJob) Run(ctx context.Context, windowDays int) error {
	if windowDays < 1 {
		windowDays = j.windowDays
	}

	start := j.clk.Now()
	var created int
	var runErr error

	var from, to time.Time
	acquired, err := j.locker.WithLock(ctx, LockGenerateDeliveries, func(ctx context.Context) error {
		from = truncateToDay(j.clk.Now())
		to = from.AddDate(0, 0, windowDays)

		agreements, err := j.agreements.ListActive(ctx)
		if err != nil {
			return err
		}

		// Agreements are processed one by one in selection order. A failure
		// on one is recorded and the pass moves on to the next.
		for i := range agreements {
			ag := &agreements[i]
			deliveries, err := j.generator.GenerateForAgreement(ctx, ag.ID, from, to)
			if err != nil {
				j.log.Error("generation failed for agreement", "agreementId", ag.ID, "error", err)
				runErr = multierr.Append(runErr, fmt.Errorf("agreement %s: %w", ag.ID, err))
				continue
			}
			created += len(deliveries)
		}
		return runErr
	})
	if !acquired {
		if err != nil {
			return err
		}
		j.log.JobSkipped(TaskGenerateDeliveries)
		return nil
	}
	if err != nil {
		j.log.JobRun(TaskGenerateDeliveries, acquired, j.clk.Now().Sub(start),
			"from", from.Format(time.DateOnly), "to", to.Format(time.DateOnly),
			"windowDays", windowDays, "created", created, "error", err)
		return err
	}

	j.log.JobRun(TaskGenerateDeliveries, acquired, j.clk.Now().Sub(start),
		"from", from.Format(time.DateOnly), "to", to.Format(time.DateOnly),
		"windowDays", windowDays, "created", created)
	return nil
}

// FallbackJob runs the fallback batch under a cross-instance lock and
// reports the outcome to the ops mailbox when anything was applied.
type FallbackJob struct {
	runner      FallbackRunner
	locker      pglock.Locker
	clk         clock.Clock
	sender      email.Sender
	notifyEmail string
	log         *logger.Logger
}

// NewFallbackJob creates a fallback job. notifyEmail may be empty to
// disable the summary email.
func NewFallbackJob(runner FallbackRunner, locker pglock.Locker, clk clock.Clock, sender email.Sender, notifyEmail string, log *logger.Logger) *FallbackJob {
	return &FallbackJob{
		runner:      runner,
		locker:      locker,
		clk:         clk,
		sender:      sender,
		notifyEmail: notifyEmail,
		log:         log,
	}
}

// Run executes one fallback pass.
func (j *FallbackJob) Run(ctx context.Context) error {
	start := j.clk.Now()
	var result *deliveryservice.RunResult

	acquired, err := j.locker.WithLock(ctx, LockApplyFallback, func(ctx context.Context) error {
		var runErr error
		result, runErr = j.runner.RunFallback(ctx)
		return runErr
	})
	if !acquired {
		if err != nil {
			return err
		}
		j.log.JobSkipped(TaskApplyFallback)
		return nil
	}
	if err != nil {
		j.log.JobRun(TaskApplyFallback, acquired, j.clk.Now().Sub(start), "error", err)
		return err
	}

	j.log.JobRun(TaskApplyFallback, acquired, j.clk.Now().Sub(start),
		"processed", result.Processed,
		"applied", result.Applied,
		"skipped", result.Skipped,
		"failed", len(result.Errors))

	for _, itemErr := range result.Errors {
		j.log.Error("fallback item failed", "deliveryId", itemErr.DeliveryID, "error", itemErr.Message)
	}

	if result.Applied > 0 && j.sender != nil && j.notifyEmail != "" {
		if err := j.sender.SendFallbackSummaryEmail(ctx, j.notifyEmail, result.Applied, len(result.Errors)); err != nil {
			j.log.Error("fallback summary email failed", "error", err)
		}
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
