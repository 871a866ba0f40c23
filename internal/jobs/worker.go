package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/Dexerto/on-demand-revalidation/internal/commands"
	"github.com/Dexerto/on-demand-revalidation/internal/logging"
	"github.com/Dexerto/on-demand-revalidation/internal/scheduler"
	"github.com/Dexerto/on-demand-revalidation/pkg/interfaces"
)

// Worker drains due invalidation jobs and replays them through the command
// handlers. Only the item id is stored with a job; each execution re-reads
// current state so a burst of edits cannot dispatch stale paths.
type Worker struct {
	scheduler interfaces.Scheduler
	handlers  *commands.HandlerSet
	logger    interfaces.Logger
	now       func() time.Time
	batchSize int
}

type Option func(*Worker)

// WithClock overrides the deadline clock, used mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.now = clock
		}
	}
}

// WithBatchSize caps how many jobs a single Process pass claims.
func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// WithLogger attaches a logger; the zero value logs nowhere.
func WithLogger(logger interfaces.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func NewWorker(sched interfaces.Scheduler, handlers *commands.HandlerSet, opts ...Option) *Worker {
	w := &Worker{
		scheduler: sched,
		handlers:  handlers,
		logger:    logging.NoOp(),
		now:       time.Now,
		batchSize: 50,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Process claims every job due at or before now and executes it. Failed jobs
// are marked for retry; the scheduler decides when they exhaust.
func (w *Worker) Process(ctx context.Context) error {
	if w.scheduler == nil {
		return errors.New("jobs: scheduler is nil")
	}
	deadline := w.now()
	due, err := w.scheduler.ListDue(ctx, deadline, w.batchSize)
	if err != nil {
		return err
	}
	for _, job := range due {
		if job == nil {
			continue
		}
		if err := w.handleJob(ctx, job); err != nil {
			w.logger.Error("jobs.failed", "job_id", job.ID, "job_type", job.Type, "error", err)
			_ = w.scheduler.MarkFailed(ctx, job.ID, err)
			continue
		}
		_ = w.scheduler.MarkDone(ctx, job.ID)
	}
	return nil
}

// Run processes jobs on the supplied interval until the context ends.
func (w *Worker) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Process(ctx); err != nil {
				w.logger.Error("jobs.process", "error", err)
			}
		}
	}
}

func (w *Worker) handleJob(ctx context.Context, job *interfaces.Job) error {
	switch job.Type {
	case scheduler.JobTypeFrontendDispatch:
		if w.handlers == nil || w.handlers.Revalidate == nil {
			return errors.New("jobs: revalidate handler is nil")
		}
		itemID, err := scheduler.ItemIDFromPayload(job.Payload)
		if err != nil {
			return err
		}
		return w.handlers.Revalidate.Execute(ctx, commands.RevalidateContentCommand{ItemID: itemID})
	case scheduler.JobTypeCloudflarePurge:
		if w.handlers == nil || w.handlers.Purge == nil {
			return errors.New("jobs: purge handler is nil")
		}
		itemID, err := scheduler.ItemIDFromPayload(job.Payload)
		if err != nil {
			return err
		}
		return w.handlers.Purge.Execute(ctx, commands.PurgeCloudflareCommand{ItemID: itemID})
	default:
		// Unknown types complete silently so foreign jobs never wedge the queue.
		return nil
	}
}
