package observability

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ShutdownManager drains registered HTTP servers and runs cleanup
// functions inside one bounded shutdown window. Signal handling stays
// with the caller; this type only executes the shutdown sequence.
type ShutdownManager struct {
	logger          *Logger
	servers         map[string]*http.Server
	shutdownFuncs   []ShutdownFunc
	shutdownTimeout time.Duration
	mu              sync.Mutex
}

// ShutdownFunc is a cleanup hook run after the servers have drained
type ShutdownFunc func(context.Context) error

// NewShutdownManager creates a shutdown manager. A zero timeout defaults
// to 30 seconds.
func NewShutdownManager(logger *Logger, timeout time.Duration) *ShutdownManager {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownManager{
		logger:          logger,
		servers:         make(map[string]*http.Server),
		shutdownTimeout: timeout,
	}
}

// Timeout returns the configured shutdown window
func (sm *ShutdownManager) Timeout() time.Duration {
	return sm.shutdownTimeout
}

// RegisterServer registers an HTTP server to drain during shutdown
func (sm *ShutdownManager) RegisterServer(name string, server *http.Server) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.servers[name] = server
}

// RegisterShutdownFunc registers a cleanup hook
func (sm *ShutdownManager) RegisterShutdownFunc(fn ShutdownFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.shutdownFuncs = append(sm.shutdownFuncs, fn)
}

// Shutdown drains all registered servers, then runs the cleanup hooks in
// parallel. The context bounds the whole sequence.
func (sm *ShutdownManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	servers := make(map[string]*http.Server, len(sm.servers))
	for name, server := range sm.servers {
		servers[name] = server
	}
	funcs := sm.shutdownFuncs
	sm.mu.Unlock()

	// Servers drain first so no new work arrives while hooks run
	for name, server := range servers {
		sm.logger.Infof("Shutting down %s server", name)
		if err := server.Shutdown(ctx); err != nil {
			sm.logger.WithError(err).Errorf("%s server shutdown error", name)
			return fmt.Errorf("%s server shutdown failed: %w", name, err)
		}
		sm.logger.Infof("%s server shutdown complete", name)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(funcs))

	for i, fn := range funcs {
		wg.Add(1)
		go func(index int, shutdownFn ShutdownFunc) {
			defer wg.Done()
			if err := shutdownFn(ctx); err != nil {
				sm.logger.WithError(err).Errorf("Shutdown function %d failed", index)
				errChan <- err
			}
		}(i, fn)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		sm.logger.Warn("Shutdown timeout reached, forcing shutdown")
		return fmt.Errorf("shutdown timeout reached")
	}

	close(errChan)
	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d errors", len(errs))
	}

	sm.logger.Info("Graceful shutdown complete")
	return nil
}
