// Package progress renders the simulated submission progress.
//
// The comparison endpoint reports no upload progress, so the percentage is
// fabricated from the selected size: it creeps toward 90% with a shrinking
// step and jumps to 100% once the estimated duration has passed, at which
// point the real request is handed off.
package progress

import (
	"math"
	"time"

	"github.com/kyaw-zaya123/checking/internal/constants"
	"github.com/kyaw-zaya123/checking/internal/eventloop"
	"github.com/kyaw-zaya123/checking/internal/logging"
	"github.com/kyaw-zaya123/checking/internal/util/humanize"
)

// Tracker is the progress seam used by the submission flow. A tracker fed by
// real transfer progress can replace the Simulator without touching callers.
type Tracker interface {
	Show()
	// Start begins tracking and arranges for handoff to run once the
	// transfer should begin. It returns the expected duration.
	Start(totalBytes int64, handoff func()) time.Duration
	Tick()
	Complete()
	// Finish ends a completed run after the transfer succeeded. The
	// surface keeps showing 100%.
	Finish()
	Reset()
}

// Display is the progress surface: a percentage bar plus elapsed and
// remaining texts, hidden while idle.
type Display interface {
	Show()
	Hide()
	SetPercent(percent int)
	SetElapsed(text string)
	SetRemaining(text string)
}

// Phase is the simulator state.
type Phase int

const (
	Idle Phase = iota
	Running
	Completing
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Completing:
		return "completing"
	default:
		return "idle"
	}
}

// Estimate returns the simulated duration in seconds for a payload size.
func Estimate(totalBytes int64) float64 {
	mb := float64(totalBytes) / (1024 * 1024)
	return constants.BaseUploadTime + mb*constants.SecondsPerMB
}

// TickInterval returns the animation period for an estimate in seconds.
func TickInterval(estimate float64) time.Duration {
	d := time.Duration(estimate * 10 * float64(time.Millisecond))
	if d < constants.MinTickInterval {
		return constants.MinTickInterval
	}
	return d
}

// Simulator is the fabricated-progress Tracker. It must only be used from
// the goroutine its scheduler runs callbacks on.
type Simulator struct {
	sched   eventloop.Scheduler
	display Display
	logger  *logging.Logger

	phase    Phase
	percent  float64
	start    time.Time
	estimate float64

	tick    eventloop.Timer
	timeout eventloop.Timer
	handoff func()
}

var _ Tracker = (*Simulator)(nil)

// NewSimulator creates an idle simulator.
func NewSimulator(sched eventloop.Scheduler, display Display, logger *logging.Logger) *Simulator {
	if display == nil {
		display = NopDisplay{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Simulator{sched: sched, display: display, logger: logger}
}

// Phase returns the current state.
func (s *Simulator) Phase() Phase {
	return s.phase
}

// Percent returns the internal, unrounded percentage.
func (s *Simulator) Percent() float64 {
	return s.percent
}

// Show makes the progress surface visible.
func (s *Simulator) Show() {
	s.display.Show()
}

// Start records the start time and schedules the animation tick and the
// handoff timer.
func (s *Simulator) Start(totalBytes int64, handoff func()) time.Duration {
	s.stopTimers()

	s.phase = Running
	s.percent = 0
	s.start = s.sched.Now()
	s.estimate = Estimate(totalBytes)
	s.handoff = handoff

	interval := TickInterval(s.estimate)
	wait := time.Duration(s.estimate * float64(time.Second))

	s.tick = s.sched.Every(interval, s.Tick)
	s.timeout = s.sched.AfterFunc(wait, s.Complete)

	s.logger.Debug().
		Int64("bytes", totalBytes).
		Float64("estimate_sec", s.estimate).
		Dur("tick", interval).
		Msg("progress simulation started")
	return wait
}

// Tick advances the animation by one step. It has no effect once the
// percentage reached the ceiling or outside the Running phase.
func (s *Simulator) Tick() {
	if s.phase != Running || s.percent >= constants.ProgressCeiling {
		return
	}

	inc := (constants.ProgressCeiling - s.percent) / (s.estimate * 10)
	if inc < constants.MinProgressIncrement {
		inc = constants.MinProgressIncrement
	}
	s.percent += inc

	shown := int(math.Round(s.percent))
	if shown > int(constants.ProgressCeiling) {
		shown = int(constants.ProgressCeiling)
	}
	s.render(shown)
}

// Complete stops the animation, shows 100% and runs the handoff.
func (s *Simulator) Complete() {
	if s.phase != Running {
		return
	}
	s.stopTimers()

	s.render(100)
	s.display.SetRemaining(constants.RemainingPrefix + humanize.FormatTime(0))
	s.phase = Completing

	s.logger.Debug().Dur("elapsed", s.elapsed()).Msg("progress simulation complete, handing off")

	if h := s.handoff; h != nil {
		s.handoff = nil
		h()
	}
}

// Finish returns a Completing simulator to Idle without touching the display.
func (s *Simulator) Finish() {
	if s.phase != Completing {
		return
	}
	s.phase = Idle
	s.logger.Debug().Dur("elapsed", s.elapsed()).Msg("progress simulation finished")
}

// Reset cancels pending timers and returns the surface to its hidden
// zero state.
func (s *Simulator) Reset() {
	s.stopTimers()
	s.handoff = nil
	s.phase = Idle
	s.percent = 0

	s.display.SetPercent(0)
	s.display.SetElapsed(constants.ElapsedPrefix + humanize.FormatTime(0))
	s.display.SetRemaining(constants.RemainingPrefix + constants.RemainingUnknown)
	s.display.Hide()
}

func (s *Simulator) stopTimers() {
	if s.tick != nil {
		s.tick.Stop()
		s.tick = nil
	}
	if s.timeout != nil {
		s.timeout.Stop()
		s.timeout = nil
	}
}

func (s *Simulator) elapsed() time.Duration {
	return s.sched.Now().Sub(s.start)
}

// render shows a displayed percentage together with the derived times.
// Remaining is extrapolated linearly from elapsed time and left untouched
// while the percentage is still zero.
func (s *Simulator) render(shown int) {
	s.display.SetPercent(shown)

	elapsed := s.elapsed().Seconds()
	s.display.SetElapsed(constants.ElapsedPrefix + humanize.FormatTime(elapsed))

	if shown > 0 {
		remaining := elapsed*(100/float64(shown)) - elapsed
		s.display.SetRemaining(constants.RemainingPrefix + humanize.FormatTime(remaining))
	}
}
