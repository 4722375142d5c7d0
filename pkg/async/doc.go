// Package async provides safe concurrent execution primitives for background tasks.
//
// # Overview
//
// This package handles goroutine lifecycle management with panic recovery, timeout
// enforcement, context cancellation, and error collection. The request serving
// path never backgrounds work; the pool exists for client-side fan-out such as
// batch envelope submission.
//
// # Key Functions
//
// WorkerPool: Managed pool of concurrent workers
//
//	pool := async.NewWorkerPool(ctx, 4, "batch submit", 30*time.Second, logger)
//	defer pool.Shutdown(5 * time.Second)
//
//	pool.Submit(func(ctx context.Context) error {
//		return client.Send(ctx, envelope)
//	})
//
// Batch: Concurrent batch processing
//
//	errs := async.Batch(ctx, envelopes, 4, "batch submit", 30*time.Second, logger,
//		func(ctx context.Context, env Envelope) error {
//			return client.Send(ctx, env)
//		})
//
// # Features
//
// Panic Recovery: Captures panics with stack traces
// Timeout Enforcement: Per-task timeouts
// Context Cancellation: Respects context cancellation
// Error Collection: Non-blocking error channels
// Graceful Shutdown: Worker draining
//
// # Related Packages
//
//   - pkg/cli: Uses Batch for concurrent request submission
package async
