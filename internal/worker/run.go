package worker

import (
	"context"
	"errors"
	"time"

	"slidedeck/internal/generator"
	"slidedeck/internal/pkg/logger"
	"slidedeck/internal/worker/queue"
)

const defaultPopTimeout = 5 * time.Second

// Queue is the consuming side of the regeneration queue.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (queue.Job, error)
}

// Generator regenerates artifacts.
type Generator interface {
	Run(ctx context.Context) (generator.Summary, error)
	RunTemplate(ctx context.Context, id string) (generator.Summary, error)
}

type Deps struct {
	Queue     Queue
	Generator Generator
	Log       *logger.Logger

	// PopTimeout bounds each blocking read so cancellation is noticed.
	PopTimeout time.Duration
	// OnDone, if set, is called after every processed job.
	OnDone func(queue.Job, generator.Summary, error)
}

// Run consumes regeneration jobs until ctx is canceled. Failed jobs are
// logged and dropped.
func Run(ctx context.Context, d Deps) error {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("worker")

	timeout := d.PopTimeout
	if timeout <= 0 {
		timeout = defaultPopTimeout
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("worker context canceled, stopping")
			return ctx.Err()
		default:
		}

		job, err := d.Queue.Pop(ctx, timeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("worker stopping due to context cancellation")
				return ctx.Err()
			}
			if errors.Is(err, queue.ErrEmpty) {
				continue
			}
			if errors.Is(err, queue.ErrMalformedJob) {
				log.Error("dropping malformed job", "error", err.Error())
				continue
			}

			log.Warn("queue pop error, retrying", "error", err.Error())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		jobLog := log.WithJobID(job.ID)
		if job.Template != "" {
			jobLog = jobLog.WithTemplate(job.Template)
		}
		jobLog.Info("processing job")
		start := time.Now()

		sum, err := process(ctx, d.Generator, job)
		if err != nil {
			jobLog.Error("job failed",
				"error", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		} else {
			jobLog.Info("job completed",
				"written", sum.Written,
				"failed", sum.Failed,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}

		if d.OnDone != nil {
			d.OnDone(job, sum, err)
		}
	}
}

func process(ctx context.Context, g Generator, job queue.Job) (generator.Summary, error) {
	if job.Template == "" {
		return g.Run(ctx)
	}
	return g.RunTemplate(ctx, job.Template)
}
