package build

import (
	"context"
	"sync"

	"server/internal/infra"
)

// Runner executes detached pipeline work with bounded concurrency. Tasks are
// tracked so a shutting-down process can drain in-flight builds instead of
// abandoning them mid-stage.
type Runner struct {
	logger  infra.Logger
	baseCtx context.Context
	sem     chan struct{}
	wg      sync.WaitGroup
}

// NewRunner creates a runner allowing up to concurrency simultaneous tasks.
func NewRunner(logger infra.Logger, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		logger:  logger,
		baseCtx: context.Background(),
		sem:     make(chan struct{}, concurrency),
	}
}

// Schedule runs fn on its own goroutine, detached from the caller's context.
// A panic inside fn is logged and leaves the records at their last
// checkpoint.
func (r *Runner) Schedule(name string, fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.sem <- struct{}{}
		defer func() { <-r.sem }()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error().Interface("panic", rec).Str("task", name).Msg("runner: task panicked")
			}
		}()
		fn(r.baseCtx)
	}()
}

// Drain waits for all scheduled tasks to finish or the context to expire.
func (r *Runner) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
