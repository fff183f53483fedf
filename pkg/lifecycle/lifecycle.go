// Package lifecycle runs named startup and shutdown hooks for long-lived
// subsystems and tracks service readiness.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrShutdownTimeout is returned when shutdown hooks outlive the deadline.
var ErrShutdownTimeout = errors.New("shutdown timed out")

// Hook is a named lifecycle step. A startup hook receives the coordinator
// context; a shutdown hook receives a context bounded by the shutdown
// timeout.
type Hook func(ctx context.Context) error

// Coordinator runs startup hooks concurrently as they are registered and
// defers shutdown hooks until Shutdown is called.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	startup  sync.WaitGroup
	shutdown sync.WaitGroup

	mu          sync.Mutex
	startupErrs []error
	stopErrs    []error
	stopCtx     context.Context

	ready atomic.Bool
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:     ctx,
		cancel:  cancel,
		stopCtx: context.Background(),
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup starts fn immediately in its own goroutine. A returned error
// keeps the coordinator from becoming ready.
func (c *Coordinator) OnStartup(name string, fn Hook) {
	c.startup.Go(func() {
		if err := fn(c.ctx); err != nil {
			c.record(&c.startupErrs, name, err)
		}
	})
}

// OnShutdown registers fn to run once Shutdown cancels the coordinator
// context. Shutdown hooks run concurrently.
func (c *Coordinator) OnShutdown(name string, fn Hook) {
	c.shutdown.Go(func() {
		<-c.ctx.Done()

		c.mu.Lock()
		ctx := c.stopCtx
		c.mu.Unlock()

		if err := fn(ctx); err != nil {
			c.record(&c.stopErrs, name, err)
		}
	})
}

// Ready reports whether every startup hook has completed without error.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// WaitForStartup blocks until all startup hooks return. The coordinator
// becomes ready only when none failed; failures are joined into the
// returned error.
func (c *Coordinator) WaitForStartup() error {
	c.startup.Wait()

	c.mu.Lock()
	err := errors.Join(c.startupErrs...)
	c.mu.Unlock()

	c.ready.Store(err == nil)
	return err
}

// Shutdown marks the coordinator unready, cancels its context and waits up
// to timeout for shutdown hooks. Hook failures are joined into the
// returned error.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.ready.Store(false)

	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c.mu.Lock()
	c.stopCtx = stopCtx
	c.mu.Unlock()

	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdown.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.mu.Lock()
		defer c.mu.Unlock()
		return errors.Join(c.stopErrs...)
	case <-stopCtx.Done():
		return fmt.Errorf("%w after %v", ErrShutdownTimeout, timeout)
	}
}

func (c *Coordinator) record(into *[]error, name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*into = append(*into, fmt.Errorf("%s: %w", name, err))
}
