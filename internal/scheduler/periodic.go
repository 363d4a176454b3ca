package scheduler

import (
	"context"
	"fmt"
	"time"

	"supply_portal_backend/platform/config"
	"supply_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic registers the recurring generation and fallback tasks with
// asynq's cron scheduler. Every instance may run one; the enqueued tasks
// are deduplicated by the advisory lock inside the job bodies.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	sched := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: time.UTC,
	})

	genTask, err := NewGenerateDeliveriesTask(GenerateDeliveriesPayload{})
	if err != nil {
		return nil, err
	}
	if _, err := sched.Register(cfg.GetGenerationCronSpec(), genTask, asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register generation cron: %w", err)
	}
	if _, err := sched.Register(cfg.GetFallbackCronSpec(), NewApplyFallbackTask(), asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register fallback cron: %w", err)
	}

	return &Periodic{scheduler: sched, log: log}, nil
}

func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}

	go func() {
		<-ctx.Done()
		p.scheduler.Shutdown()
	}()

	if err := p.scheduler.Run(); err != nil {
		p.log.Error("periodic scheduler stopped", "error", err)
	}
}
