package testutil

import "sync"

// RecordingNotifier collects alerts.
type RecordingNotifier struct {
	mu     sync.Mutex
	alerts []string
}

func (n *RecordingNotifier) Alert(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, message)
}

// Alerts returns a copy of the alerts received so far.
func (n *RecordingNotifier) Alerts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.alerts...)
}

// RecordingDisplay is a progress display that remembers its last state and
// every percentage it was given.
type RecordingDisplay struct {
	mu        sync.Mutex
	visible   bool
	percents  []int
	elapsed   string
	remaining string
}

func (d *RecordingDisplay) Show() { d.set(func() { d.visible = true }) }
func (d *RecordingDisplay) Hide() { d.set(func() { d.visible = false }) }

func (d *RecordingDisplay) SetPercent(p int) {
	d.set(func() { d.percents = append(d.percents, p) })
}

func (d *RecordingDisplay) SetElapsed(s string)   { d.set(func() { d.elapsed = s }) }
func (d *RecordingDisplay) SetRemaining(s string) { d.set(func() { d.remaining = s }) }

func (d *RecordingDisplay) set(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

// Visible reports whether the display is shown.
func (d *RecordingDisplay) Visible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible
}

// Percents returns every percentage set, in order.
func (d *RecordingDisplay) Percents() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.percents...)
}

// Percent returns the last percentage set, or -1 if none.
func (d *RecordingDisplay) Percent() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.percents) == 0 {
		return -1
	}
	return d.percents[len(d.percents)-1]
}

// Elapsed returns the last elapsed text.
func (d *RecordingDisplay) Elapsed() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.elapsed
}

// Remaining returns the last remaining text.
func (d *RecordingDisplay) Remaining() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.remaining
}
