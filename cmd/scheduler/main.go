package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	agreementrepo "supply_portal_backend/internal/agreements/repository"
	deliveryrepo "supply_portal_backend/internal/deliveries/repository"
	deliveryservice "supply_portal_backend/internal/deliveries/service"
	"supply_portal_backend/internal/email"
	"supply_portal_backend/internal/events"
	"supply_portal_backend/internal/idempotency"
	"supply_portal_backend/internal/notification"
	"supply_portal_backend/internal/scheduler"
	"supply_portal_backend/platform/clock"
	"supply_portal_backend/platform/config"
	"supply_portal_backend/platform/db"
	"supply_portal_backend/platform/logger"
	"supply_portal_backend/platform/pglock"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	sender := email.NewSender(cfg)

	ledger := idempotency.New(idempotency.NewPostgresStore(pool))
	notificationModule := notification.New(ledger, sender, cfg, log)
	notificationModule.Register(eventBus)

	clk := clock.System{}
	agreementRepo := agreementrepo.New(pool)
	deliverySvc := deliveryservice.New(deliveryrepo.New(pool), agreementRepo, eventBus, clk)
	locker := pglock.New(pool)

	generationJob := scheduler.NewGenerationJob(agreementRepo, deliverySvc, locker, clk, cfg.GetGenerationWindowDays(), log)
	fallbackJob := scheduler.NewFallbackJob(deliverySvc, locker, clk, sender, cfg.GetOpsNotifyEmail(), log)

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}
	go periodic.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, generationJob, fallbackJob, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
