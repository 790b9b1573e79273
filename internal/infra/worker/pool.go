// Package worker provides a bounded pool for document extraction tasks.
// The pool caps concurrent extractions with a weighted semaphore so that a
// burst of large uploads cannot exhaust memory, and applies a per-task
// timeout so a pathological document cannot hold a slot forever.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"
)

// Pool executes tasks with bounded concurrency and a per-task timeout.
// Run blocks the caller while the task executes; the pool only limits how
// many tasks execute at the same time. Acquisition respects the caller's
// context, so a client that gives up while queued releases nothing.
type Pool struct {
	sem     *semaphore.Weighted
	timeout time.Duration
	logger  *slog.Logger
	metrics *PoolMetrics
}

// NewPool creates a Pool from the given configuration.
// A nil metrics recorder disables instrumentation.
func NewPool(cfg PoolConfig, logger *slog.Logger, metrics *PoolMetrics) *Pool {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = DefaultConfig().TaskTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		timeout: cfg.TaskTimeout,
		logger:  logger,
		metrics: metrics,
	}
}

// Run executes task under the pool's concurrency bound.
// It waits for a free slot (honoring ctx), then runs the task with the
// configured timeout applied on top of ctx. The task's error is returned
// unchanged; queue-wait cancellation is reported as a wrapped ctx error.
func (p *Pool) Run(ctx context.Context, name string, task func(context.Context) error) error {
	waitStart := time.Now()
	if err := p.sem.Acquire(ctx, 1); err != nil {
		if p.metrics != nil {
			p.metrics.RecordTask(name, "rejected", 0)
		}
		return fmt.Errorf("worker pool acquire: %w", err)
	}
	defer p.sem.Release(1)

	if p.metrics != nil {
		p.metrics.RecordQueueWait(time.Since(waitStart).Seconds())
	}

	taskCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err := task(taskCtx)
	elapsed := time.Since(start)

	status := "success"
	if err != nil {
		status = "failure"
		p.logger.Warn("worker task failed",
			slog.String("task", name),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", err))
	}
	if p.metrics != nil {
		p.metrics.RecordTask(name, status, elapsed.Seconds())
	}
	return err
}
