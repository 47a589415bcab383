// Package eventloop runs all form and progress logic on one goroutine.
//
// UI actions, animation ticks, the handoff timer and network completions are
// all delivered as callbacks on the loop, so the core never needs locks.
// Timers only enqueue work; a timer stopped on the loop is guaranteed not to
// run a callback afterwards, even if its underlying clock already fired.
package eventloop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned when posting to a loop that has shut down.
var ErrClosed = errors.New("event loop closed")

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop()
}

// Scheduler is the host timer facility the core is written against.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	Every(d time.Duration, f func()) Timer
	Post(f func()) error
}

// Loop is a single-goroutine callback queue.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// New creates a loop. Call Run to start processing.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Run processes callbacks until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
			l.drain()
		}
	}
}

func (l *Loop) drain() {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, fn := range batch {
		select {
		case <-l.done:
			return
		default:
		}
		fn()
	}
}

// Post enqueues f to run on the loop goroutine. It never blocks.
func (l *Loop) Post(f func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.pending = append(l.pending, f)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Do runs f on the loop and waits for it to finish.
// It must not be called from the loop goroutine.
func (l *Loop) Do(f func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		f()
	}); err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

// Close stops the loop. Pending callbacks are discarded.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.pending = nil
	close(l.done)
}

// Done is closed once the loop has shut down.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

type loopTimer struct {
	stopped atomic.Bool
	queued  atomic.Bool // a tick is waiting on the loop
	timer   *time.Timer
	quit    chan struct{}
	once    sync.Once
}

func (t *loopTimer) Stop() {
	t.stopped.Store(true)
	t.once.Do(func() {
		if t.timer != nil {
			t.timer.Stop()
		}
		if t.quit != nil {
			close(t.quit)
		}
	})
}

// AfterFunc runs f on the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		_ = l.Post(func() {
			if t.stopped.Swap(true) {
				return
			}
			f()
		})
	})
	return t
}

// Every runs f on the loop every d until stopped.
// At most one tick is queued at a time, so a slow loop coalesces ticks
// instead of running them back to back.
func (l *Loop) Every(d time.Duration, f func()) Timer {
	t := &loopTimer{quit: make(chan struct{})}
	ticker := time.NewTicker(d)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.quit:
				return
			case <-l.done:
				return
			case <-ticker.C:
				if t.queued.Swap(true) {
					continue
				}
				_ = l.Post(func() {
					t.queued.Store(false)
					if t.stopped.Load() {
						return
					}
					f()
				})
			}
		}
	}()

	return t
}
