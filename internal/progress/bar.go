package progress

import (
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/kyaw-zaya123/checking/internal/constants"
)

// BarDisplay renders the progress surface as a single progressbar line with
// the elapsed and remaining texts as its description.
type BarDisplay struct {
	mu        sync.Mutex
	w         io.Writer
	bar       *progressbar.ProgressBar
	elapsed   string
	remaining string
}

// NewBarDisplay creates a display writing to w.
func NewBarDisplay(w io.Writer) *BarDisplay {
	return &BarDisplay{w: w}
}

func (d *BarDisplay) Show() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.bar != nil {
		return
	}
	d.bar = progressbar.NewOptions(100,
		progressbar.OptionSetWriter(d.w),
		progressbar.OptionSetDescription("Сравнение"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(constants.TerminalRefreshRate),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)
}

func (d *BarDisplay) Hide() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.bar == nil {
		return
	}
	_ = d.bar.Clear()
	d.bar = nil
}

func (d *BarDisplay) SetPercent(p int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.bar != nil {
		_ = d.bar.Set(p)
	}
}

func (d *BarDisplay) SetElapsed(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elapsed = text
	d.describe()
}

func (d *BarDisplay) SetRemaining(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.remaining = text
	d.describe()
}

func (d *BarDisplay) describe() {
	if d.bar != nil {
		d.bar.Describe(d.elapsed + "  " + d.remaining)
	}
}

// Writer returns the underlying stream. Lines written to it land on a fresh
// line because the bar redraws on the next update.
func (d *BarDisplay) Writer() io.Writer { return d.w }

func (d *BarDisplay) Close() { d.Hide() }
