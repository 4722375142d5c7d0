package async

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/marmotbyte/spyglass/pkg/observability"
)

// WorkerPool manages a pool of workers that process tasks from a channel.
// Provides graceful shutdown and error collection.
type WorkerPool struct {
	workers      int
	taskName     string
	timeout      time.Duration
	logger       *observability.Logger
	workCh       chan func(context.Context) error
	doneCh       chan struct{}
	errCh        chan error
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

// NewWorkerPool creates a new worker pool. A nil logger falls back to a
// default stderr logger.
//
// Example:
//
//	pool := NewWorkerPool(ctx, 4, "batch submit", 30*time.Second, logger)
//	defer pool.Shutdown(5 * time.Second)
//
//	pool.Submit(func(ctx context.Context) error {
//	    return client.Send(ctx, envelope)
//	})
func NewWorkerPool(ctx context.Context, workers int, taskName string, timeout time.Duration, logger *observability.Logger) *WorkerPool {
	ctx, cancel := context.WithCancel(ctx)

	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, os.Stderr)
	}

	pool := &WorkerPool{
		workers:  workers,
		taskName: taskName,
		timeout:  timeout,
		logger:   logger,
		workCh:   make(chan func(context.Context) error, workers*2),
		doneCh:   make(chan struct{}),
		errCh:    make(chan error, workers*10), // Larger buffer to avoid drops
		ctx:      ctx,
		cancel:   cancel,
	}

	// Start workers and wait for them to finish in background
	go func() {
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				pool.worker(id)
			}(i)
		}
		wg.Wait()
		close(pool.doneCh)
	}()

	return pool
}

// Submit adds a task to the worker pool.
// Returns error if pool is shut down.
func (p *WorkerPool) Submit(fn func(context.Context) error) error {
	// Check if already shut down
	select {
	case <-p.doneCh:
		return fmt.Errorf("worker pool shut down")
	default:
	}

	defer func() {
		if r := recover(); r != nil {
			// Shutdown closed the channel between the check above and
			// the send below
			_ = r
		}
	}()

	select {
	case p.workCh <- fn:
		return nil
	case <-p.doneCh:
		return fmt.Errorf("worker pool shut down")
	}
}

// Shutdown gracefully shuts down the worker pool.
// Waits up to timeout for workers to finish current tasks.
func (p *WorkerPool) Shutdown(timeout time.Duration) error {
	var shutdownErr error

	p.shutdownOnce.Do(func() {
		// Close work channel so workers can drain remaining tasks.
		// The channel may already be closed if Batch drained the pool.
		func() {
			defer func() {
				if r := recover(); r != nil {
					_ = r
				}
			}()
			close(p.workCh)
		}()

		select {
		case <-p.doneCh:
			p.cancel()
		case <-time.After(timeout):
			p.cancel()
			shutdownErr = fmt.Errorf("worker pool shutdown timed out after %v", timeout)
		}
	})

	return shutdownErr
}

// Errors returns a channel that receives worker errors.
// Non-blocking, use select to check for errors.
func (p *WorkerPool) Errors() <-chan error {
	return p.errCh
}

// report delivers an error to the collection channel, dropping it with a
// warning when the buffer is full.
func (p *WorkerPool) report(err error) {
	select {
	case p.errCh <- err:
	default:
		p.logger.WithError(err).Warn("error channel full, dropping error")
	}
}

func (p *WorkerPool) worker(id int) {
	defer observability.RecoverPanic(p.logger.WithField("worker", id), p.taskName)

	for {
		select {
		case <-p.ctx.Done():
			return

		case fn, ok := <-p.workCh:
			if !ok {
				return
			}

			ctx, cancel := context.WithTimeout(p.ctx, p.timeout)

			func() {
				defer cancel()
				defer func() {
					if err := observability.MustRecover(recover()); err != nil {
						p.report(err)
					}
				}()

				if err := fn(ctx); err != nil {
					p.report(err)
				}
			}()
		}
	}
}

// Batch processes a slice of items concurrently using a worker pool.
// Returns all errors encountered.
//
// Example:
//
//	errs := Batch(ctx, envelopes, 4, "batch submit", 30*time.Second, logger,
//	    func(ctx context.Context, env Envelope) error {
//	        return client.Send(ctx, env)
//	    })
func Batch[T any](ctx context.Context, items []T, workers int, taskName string, timeout time.Duration,
	logger *observability.Logger, fn func(context.Context, T) error) []error {

	pool := NewWorkerPool(ctx, workers, taskName, timeout, logger)
	defer pool.Shutdown(5 * time.Second)

	for _, item := range items {
		item := item
		if err := pool.Submit(func(ctx context.Context) error {
			return fn(ctx, item)
		}); err != nil {
			return []error{err}
		}
	}

	// Close the work channel so workers drain remaining tasks, then wait
	close(pool.workCh)
	<-pool.doneCh

	pool.cancel()

	var errs []error
	for {
		select {
		case err := <-pool.errCh:
			errs = append(errs, err)
		default:
			return errs
		}
	}
}
