// Package ratelimit serializes access to a single external service.
//
// [Limiter] guarantees that tasks run one at a time in submission order
// with a minimum gap between task starts. It exists because services
// like the VizieR TAP endpoint throttle clients that issue overlapping
// or rapid-fire requests; funnelling every outbound call through one
// Limiter keeps the whole process under the service's limit no matter
// how many goroutines fan out above it.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultSpacing is the minimum gap between task starts when no
// explicit spacing is given.
const DefaultSpacing = 200 * time.Millisecond

type task struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// Limiter runs enqueued tasks strictly FIFO with a minimum spacing
// between task starts. A task runs to completion before the next one
// starts; a task's failure does not halt the queue.
//
// The limiter has no cancellation primitive of its own. A task that
// honors its context can return early, which simply unblocks the queue
// sooner. A caller whose context dies while still queued is released
// with ctx.Err() and its task never runs.
//
// The zero value is not usable; construct with [New]. A single Limiter
// is safe for concurrent use by any number of goroutines.
type Limiter struct {
	pace *rate.Limiter

	mu       sync.Mutex
	queue    []*task
	draining bool
}

// New creates a Limiter enforcing the given minimum gap between task
// starts. A non-positive spacing falls back to [DefaultSpacing].
func New(spacing time.Duration) *Limiter {
	if spacing <= 0 {
		spacing = DefaultSpacing
	}
	return &Limiter{
		pace: rate.NewLimiter(rate.Every(spacing), 1),
	}
}

// Do enqueues fn and blocks until it has run (or been skipped because
// ctx died first), returning fn's error. Tasks run in Do call order;
// two tasks never run concurrently.
func (l *Limiter) Do(ctx context.Context, fn func(context.Context) error) error {
	t := &task{ctx: ctx, fn: fn, done: make(chan error, 1)}

	l.mu.Lock()
	l.queue = append(l.queue, t)
	if !l.draining {
		l.draining = true
		go l.drain()
	}
	l.mu.Unlock()

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		// The drain loop will notice the dead context and skip the task.
		return ctx.Err()
	}
}

// drain processes the queue until it is empty, then exits. Exactly one
// drain goroutine runs at a time; the draining flag guards restarts.
func (l *Limiter) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.draining = false
			l.mu.Unlock()
			return
		}
		t := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		if t.ctx.Err() != nil {
			t.done <- t.ctx.Err()
			continue
		}
		// Wait cancels its reservation if the task's context dies, so a
		// skipped task does not consume spacing.
		if err := l.pace.Wait(t.ctx); err != nil {
			t.done <- err
			continue
		}
		t.done <- t.fn(t.ctx)
	}
}
