package scheduler

import (
	"context"
	"fmt"

	"supply_portal_backend/platform/config"
	"supply_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes scheduler tasks and runs the job bodies.
type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	generation *GenerationJob
	fallback   *FallbackJob
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, generation *GenerationJob, fallback *FallbackJob, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		generation: generation,
		fallback:   fallback,
		log:        log,
	}

	mux.HandleFunc(TaskGenerateDeliveries, w.handleGenerateDeliveries)
	mux.HandleFunc(TaskApplyFallback, w.handleApplyFallback)

	return w, nil
}

func (w *Worker) handleGenerateDeliveries(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseGenerateDeliveriesPayload(task)
	if err != nil {
		return err
	}
	return w.generation.Run(ctx, payload.WindowDays)
}

func (w *Worker) handleApplyFallback(ctx context.Context, _ *asynq.Task) error {
	return w.fallback.Run(ctx)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
