package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/kyaw-zaya123/checking/internal/events"
)

// Display styles accepted by NewDisplay.
const (
	StyleAuto  = "auto"
	StyleMPB   = "mpb"
	StyleBar   = "bar"
	StylePlain = "plain"
)

// TerminalDisplay is a Display that owns an output stream. Writer returns a
// writer that prints above the bar so log lines do not tear it.
type TerminalDisplay interface {
	Display
	Writer() io.Writer
	Close()
}

// NewDisplay picks a terminal display for the given style. "auto" uses mpb
// when f is a terminal and plain text otherwise.
func NewDisplay(style string, f *os.File) (TerminalDisplay, error) {
	switch style {
	case "", StyleAuto:
		if term.IsTerminal(int(f.Fd())) {
			enableANSI(f)
			return NewMPBDisplay(f), nil
		}
		return NewTextDisplay(f), nil
	case StyleMPB:
		enableANSI(f)
		return NewMPBDisplay(f), nil
	case StyleBar:
		enableANSI(f)
		return NewBarDisplay(f), nil
	case StylePlain:
		return NewTextDisplay(f), nil
	default:
		return nil, fmt.Errorf("unknown display style %q (want auto, mpb, bar or plain)", style)
	}
}

// NopDisplay ignores every update.
type NopDisplay struct{}

func (NopDisplay) Show()               {}
func (NopDisplay) Hide()               {}
func (NopDisplay) SetPercent(int)      {}
func (NopDisplay) SetElapsed(string)   {}
func (NopDisplay) SetRemaining(string) {}

// TextDisplay prints one line per 10% step. Used when stderr is not a terminal.
type TextDisplay struct {
	mu        sync.Mutex
	w         io.Writer
	visible   bool
	lastStep  int
	percent   int
	elapsed   string
	remaining string
}

// NewTextDisplay creates a line-oriented display.
func NewTextDisplay(w io.Writer) *TextDisplay {
	return &TextDisplay{w: w, lastStep: -1}
}

func (d *TextDisplay) Show() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visible = true
	d.lastStep = -1
}

func (d *TextDisplay) Hide() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visible = false
}

func (d *TextDisplay) SetPercent(p int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.percent = p
}

func (d *TextDisplay) SetElapsed(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elapsed = text
}

// SetRemaining is the last update of every render, so the line is printed here.
func (d *TextDisplay) SetRemaining(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.remaining = text

	if !d.visible || d.percent == 0 {
		return
	}
	step := d.percent / 10
	if step == d.lastStep {
		return
	}
	d.lastStep = step
	fmt.Fprintf(d.w, "%3d%%  %s  %s\n", d.percent, d.elapsed, d.remaining)
}

func (d *TextDisplay) Writer() io.Writer { return d.w }
func (d *TextDisplay) Close()            {}

// BusDisplay mirrors the progress surface onto the event bus.
type BusDisplay struct {
	mu        sync.Mutex
	bus       *events.EventBus
	visible   bool
	percent   int
	elapsed   string
	remaining string
}

// NewBusDisplay creates a display that publishes ProgressEvents.
func NewBusDisplay(bus *events.EventBus) *BusDisplay {
	return &BusDisplay{bus: bus}
}

func (d *BusDisplay) Show()                    { d.update(func() { d.visible = true }) }
func (d *BusDisplay) Hide()                    { d.update(func() { d.visible = false }) }
func (d *BusDisplay) SetPercent(p int)         { d.update(func() { d.percent = p }) }
func (d *BusDisplay) SetElapsed(text string)   { d.update(func() { d.elapsed = text }) }
func (d *BusDisplay) SetRemaining(text string) { d.update(func() { d.remaining = text }) }

func (d *BusDisplay) update(fn func()) {
	d.mu.Lock()
	fn()
	visible, percent, elapsed, remaining := d.visible, d.percent, d.elapsed, d.remaining
	d.mu.Unlock()

	d.bus.PublishProgress(visible, percent, elapsed, remaining)
}

// Multi fans updates out to several displays.
type Multi []Display

func (m Multi) Show() {
	for _, d := range m {
		d.Show()
	}
}

func (m Multi) Hide() {
	for _, d := range m {
		d.Hide()
	}
}

func (m Multi) SetPercent(p int) {
	for _, d := range m {
		d.SetPercent(p)
	}
}

func (m Multi) SetElapsed(text string) {
	for _, d := range m {
		d.SetElapsed(text)
	}
}

func (m Multi) SetRemaining(text string) {
	for _, d := range m {
		d.SetRemaining(text)
	}
}
