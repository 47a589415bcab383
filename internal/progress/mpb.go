package progress

import (
	"io"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/kyaw-zaya123/checking/internal/constants"
)

// MPBDisplay renders the progress surface as an mpb bar with the elapsed
// and remaining texts as decorators.
type MPBDisplay struct {
	progress *mpb.Progress

	mu        sync.Mutex
	bar       *mpb.Bar
	elapsed   string
	remaining string
}

// NewMPBDisplay creates an mpb container writing to w.
func NewMPBDisplay(w io.Writer) *MPBDisplay {
	return &MPBDisplay{
		progress: mpb.New(
			mpb.WithOutput(w),
			mpb.WithRefreshRate(constants.TerminalRefreshRate),
			mpb.WithWidth(60),
			// An explicit --display mpb may target a pipe or a file
			mpb.WithAutoRefresh(),
		),
		elapsed:   constants.ElapsedPrefix + "0 сек",
		remaining: constants.RemainingPrefix + constants.RemainingUnknown,
	}
}

func (d *MPBDisplay) Show() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.bar != nil && !d.bar.Completed() && !d.bar.Aborted() {
		return
	}

	d.bar = d.progress.New(100,
		mpb.BarStyle().
			Lbound("[").
			Filler("█").
			Tip("█").
			Padding("░").
			Rbound("]"),
		mpb.PrependDecorators(
			decor.Name("Сравнение", decor.WCSyncSpaceR),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string {
				d.mu.Lock()
				defer d.mu.Unlock()
				return d.elapsed + "  " + d.remaining
			}, decor.WCSyncSpace),
		),
		mpb.BarRemoveOnComplete(),
	)
}

// Hide drops the bar. A bar that already reached 100% removes itself.
func (d *MPBDisplay) Hide() {
	d.mu.Lock()
	bar := d.bar
	d.bar = nil
	d.mu.Unlock()

	if bar != nil && !bar.Completed() {
		bar.Abort(true)
	}
}

func (d *MPBDisplay) SetPercent(p int) {
	d.mu.Lock()
	bar := d.bar
	d.mu.Unlock()

	if bar != nil {
		bar.SetCurrent(int64(p))
	}
}

func (d *MPBDisplay) SetElapsed(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elapsed = text
}

func (d *MPBDisplay) SetRemaining(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.remaining = text
}

// Writer prints above the bar.
func (d *MPBDisplay) Writer() io.Writer {
	return d.progress
}

// Close aborts a visible bar and waits for the renderer to exit.
func (d *MPBDisplay) Close() {
	d.Hide()
	d.progress.Wait()
}
