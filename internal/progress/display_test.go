package progress

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kyaw-zaya123/checking/internal/constants"
)

// drive shows a display and applies one full update.
func drive(d Display, percent int, elapsed, remaining string) {
	d.Show()
	d.SetPercent(percent)
	d.SetElapsed(elapsed)
	d.SetRemaining(remaining)
}

func TestBarDisplay(t *testing.T) {
	var buf bytes.Buffer
	d := NewBarDisplay(&buf)

	// Updates before Show are ignored
	d.SetPercent(10)
	d.SetElapsed("Прошло: 1 сек")
	if buf.Len() != 0 {
		t.Fatalf("hidden bar wrote %q", buf.String())
	}

	d.Show()
	if !strings.Contains(buf.String(), "Сравнение") {
		t.Fatalf("blank bar missing its name: %q", buf.String())
	}

	// Redraws are throttled; the update after the pause renders everything
	d.SetPercent(50)
	d.SetElapsed("Прошло: 3 сек")
	time.Sleep(constants.TerminalRefreshRate + 50*time.Millisecond)
	d.SetRemaining("Осталось: 3 сек")

	out := buf.String()
	for _, want := range []string{"50%", "Прошло: 3 сек", "Осталось: 3 сек"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q: %q", want, out)
		}
	}

	d.Hide()
	d.Hide()
	d.SetPercent(60)
	d.Close()

	if d.Writer() != &buf {
		t.Error("Writer must return the underlying stream")
	}
}

func TestMPBDisplay(t *testing.T) {
	var buf bytes.Buffer
	d := NewMPBDisplay(&buf)

	drive(d, 40, "Прошло: 2 сек", "Осталось: 3 сек")
	d.Show() // second Show keeps the running bar
	if _, err := d.Writer().Write([]byte("log line\n")); err != nil {
		t.Fatalf("write above bar: %v", err)
	}
	time.Sleep(3 * constants.TerminalRefreshRate)

	d.Hide()
	d.SetPercent(70) // no bar, no effect

	done := make(chan struct{})
	go func() {
		d.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}

	out := buf.String()
	for _, want := range []string{"Сравнение", "Прошло: 2 сек", "Осталось: 3 сек", "log line"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q: %q", want, out)
		}
	}
}

func TestTextDisplay_PrintsOncePerStep(t *testing.T) {
	var buf bytes.Buffer
	d := NewTextDisplay(&buf)

	drive(d, 0, "Прошло: 0 сек", "Осталось: расчет...")
	for _, p := range []int{12, 15, 19, 23} {
		d.SetPercent(p)
		d.SetElapsed("e")
		d.SetRemaining("r")
	}
	d.Hide()
	d.SetPercent(100)
	d.SetRemaining("r")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one line per 10%% step, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], " 12%") || !strings.HasPrefix(lines[1], " 23%") {
		t.Errorf("unexpected lines %q", lines)
	}
}

func TestNewDisplay(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	tests := []struct {
		style string
		want  string
	}{
		{"", "*progress.TextDisplay"},
		{StyleAuto, "*progress.TextDisplay"},
		{StylePlain, "*progress.TextDisplay"},
		{StyleBar, "*progress.BarDisplay"},
		{StyleMPB, "*progress.MPBDisplay"},
	}
	for _, tt := range tests {
		d, err := NewDisplay(tt.style, f)
		if err != nil {
			t.Errorf("NewDisplay(%q): %v", tt.style, err)
			continue
		}
		if got := typeName(d); got != tt.want {
			t.Errorf("NewDisplay(%q) = %s, want %s", tt.style, got, tt.want)
		}
		d.Close()
	}

	if _, err := NewDisplay("fancy", f); err == nil {
		t.Error("expected an error for an unknown style")
	}
}

func typeName(d TerminalDisplay) string {
	switch d.(type) {
	case *TextDisplay:
		return "*progress.TextDisplay"
	case *BarDisplay:
		return "*progress.BarDisplay"
	case *MPBDisplay:
		return "*progress.MPBDisplay"
	default:
		return "unknown"
	}
}
