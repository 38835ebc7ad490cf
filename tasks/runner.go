// Package tasks runs fire-and-forget work (notification and invoice
// dispatch) as tracked background goroutines. Failures are logged and never
// reported back to the caller that scheduled them.
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Runner struct {
	logger  *zap.Logger
	timeout time.Duration
	base    context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewRunner(logger *zap.Logger, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	base, cancel := context.WithCancel(context.Background())
	return &Runner{
		logger:  logger.With(zap.String("component", "tasks")),
		timeout: timeout,
		base:    base,
		cancel:  cancel,
	}
}

// Go starts fn in the background. fn gets its own context bounded by the
// runner timeout, detached from any request context.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(r.base, r.timeout)
		defer cancel()

		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("background task panicked", zap.String("task", name), zap.Any("panic", rec))
			}
		}()

		start := time.Now()
		if err := fn(ctx); err != nil {
			r.logger.Warn("background task failed",
				zap.String("task", name),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			return
		}
		r.logger.Debug("background task done", zap.String("task", name), zap.Duration("elapsed", time.Since(start)))
	}()
}

// Wait blocks until every task finished or ctx is done, in which case the
// remaining tasks are cancelled.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		r.cancel()
		return ctx.Err()
	}
}
