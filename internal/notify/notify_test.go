package notify

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/kyaw-zaya123/checking/internal/events"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a long string", 10, "this is..."},
		{"", 10, ""},
		{"abcd", 3, "..."},
		{"Сравнение документов", 12, "Сравнение..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestShortenPath(t *testing.T) {
	short := "/tmp/result.html"
	if got := shortenPath(short); got != short {
		t.Errorf("short path changed: %q", got)
	}

	long := "/a/very/long/path/that/exceeds/the/maximum/length/for/notification/display/result.html"
	if got := shortenPath(long); len(got) >= len(long) {
		t.Errorf("shortenPath(%q) was not shortened: %q", long, got)
	}
}

func TestConsoleAlert(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).Alert("Размер файла превышает 10 МБ")

	if got := buf.String(); got != "! Размер файла превышает 10 МБ\n" {
		t.Errorf("unexpected console output %q", got)
	}
}

func TestBusAlert(t *testing.T) {
	bus := events.NewEventBus(4)
	defer bus.Close()
	ch := bus.Subscribe(events.EventNotification)

	NewBus(bus).Alert("hello")

	select {
	case ev := <-ch:
		if n := ev.(*events.NotificationEvent); n.Message != "hello" {
			t.Errorf("expected hello, got %q", n.Message)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no notification published")
	}
}

type recorder struct{ got []string }

func (r *recorder) Alert(m string) { r.got = append(r.got, m) }

func TestMultiAlert(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Multi{a, Nop{}, b}.Alert("x")

	if len(a.got) != 1 || len(b.got) != 1 {
		t.Errorf("expected both notifiers to receive alert, got %v and %v", a.got, b.got)
	}
}

func TestDesktopFallsBackToNotify(t *testing.T) {
	d := NewDesktop(true, nil)
	var notified []string
	d.alert = func(title, message string) error { return errors.New("no alert support") }
	d.notify = func(title, message string) error {
		notified = append(notified, message)
		return nil
	}

	d.Alert("boom")
	if len(notified) != 1 || notified[0] != "boom" {
		t.Errorf("expected fallback notify with 'boom', got %v", notified)
	}

	d.SetEnabled(false)
	d.Alert("ignored")
	d.DocumentReady("title", "/tmp/x.html")
	if len(notified) != 1 {
		t.Errorf("disabled notifier still sent: %v", notified)
	}
}
