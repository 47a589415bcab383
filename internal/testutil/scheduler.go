// Package testutil provides deterministic stand-ins for the event loop and
// the presentation surfaces so core packages can be tested without a terminal.
package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/kyaw-zaya123/checking/internal/eventloop"
)

// ManualScheduler is an eventloop.Scheduler driven by the test.
// Time only moves on Advance; timers and posted callbacks run on the
// goroutine that calls Advance, Drain or AwaitPosted.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
	posted []func()
	wake   chan struct{}
}

type manualTimer struct {
	s        *ManualScheduler
	seq      int
	due      time.Time
	interval time.Duration // zero for one-shot timers
	fn       func()
	stopped  bool
}

func (t *manualTimer) Stop() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.stopped = true
}

// NewManualScheduler starts the clock at a fixed instant.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{
		now:  time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		wake: make(chan struct{}, 1),
	}
}

var _ eventloop.Scheduler = (*ManualScheduler)(nil)

// Now returns the simulated time.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc schedules a one-shot callback.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) eventloop.Timer {
	return s.add(d, 0, f)
}

// Every schedules a periodic callback.
func (s *ManualScheduler) Every(d time.Duration, f func()) eventloop.Timer {
	return s.add(d, d, f)
}

func (s *ManualScheduler) add(d, interval time.Duration, f func()) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, seq: s.seq, due: s.now.Add(d), interval: interval, fn: f}
	s.timers = append(s.timers, t)
	return t
}

// Post queues f until the next Drain, Advance or AwaitPosted.
func (s *ManualScheduler) Post(f func()) error {
	s.mu.Lock()
	s.posted = append(s.posted, f)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Drain runs every posted callback, including ones posted while draining.
// It returns how many ran.
func (s *ManualScheduler) Drain() int {
	ran := 0
	for {
		s.mu.Lock()
		batch := s.posted
		s.posted = nil
		s.mu.Unlock()
		if len(batch) == 0 {
			return ran
		}
		for _, fn := range batch {
			fn()
			ran++
		}
	}
}

// AwaitPosted blocks until a callback is posted from another goroutine,
// then drains. It returns false on timeout.
func (s *ManualScheduler) AwaitPosted(timeout time.Duration) bool {
	if s.Drain() > 0 {
		return true
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case <-s.wake:
			if s.Drain() > 0 {
				return true
			}
		case <-deadline.C:
			return false
		}
	}
}

// Advance moves the clock forward by d, firing due timers in order.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDueLocked(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			break
		}
		s.now = next.due
		if next.interval > 0 {
			next.due = next.due.Add(next.interval)
		} else {
			next.stopped = true
		}
		fn := next.fn
		s.mu.Unlock()

		fn()
		s.Drain()
	}
	s.Drain()
}

func (s *ManualScheduler) nextDueLocked(target time.Time) *manualTimer {
	active := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			active = append(active, t)
		}
	}
	s.timers = active

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].due.Equal(active[j].due) {
			return active[i].seq < active[j].seq
		}
		return active[i].due.Before(active[j].due)
	})
	if len(active) == 0 || active[0].due.After(target) {
		return nil
	}
	return active[0]
}

// ActiveTimers reports how many timers have not fired or been stopped.
func (s *ManualScheduler) ActiveTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}
