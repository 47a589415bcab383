// Package notify surfaces user-facing alerts. The form core only sees the
// Notifier interface; hosts pick console, desktop or event-bus delivery.
package notify

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/kyaw-zaya123/checking/internal/events"
	"github.com/kyaw-zaya123/checking/internal/logging"
)

// Notifier shows a blocking-style alert to the user.
type Notifier interface {
	Alert(message string)
}

// Nop drops every alert.
type Nop struct{}

func (Nop) Alert(string) {}

// Console writes alerts to a writer, one "!" prefixed line per message line.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a console notifier.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Alert(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "! %s\n", message)
}

// Bus publishes alerts as NotificationEvents for the interactive form.
type Bus struct {
	bus *events.EventBus
}

// NewBus creates an event-bus notifier.
func NewBus(bus *events.EventBus) *Bus {
	return &Bus{bus: bus}
}

func (b *Bus) Alert(message string) {
	b.bus.PublishNotification(message)
}

// Multi fans an alert out to several notifiers.
type Multi []Notifier

func (m Multi) Alert(message string) {
	for _, n := range m {
		n.Alert(message)
	}
}

// Desktop sends alerts as native desktop notifications.
type Desktop struct {
	logger  *logging.Logger
	enabled bool
	mu      sync.RWMutex

	alert  func(title, message string) error
	notify func(title, message string) error
}

// NewDesktop creates a desktop notifier.
func NewDesktop(enabled bool, logger *logging.Logger) *Desktop {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Desktop{
		logger:  logger,
		enabled: enabled,
		alert: func(title, message string) error {
			return beeep.Alert(title, message, "")
		},
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

// SetEnabled enables or disables notifications.
func (d *Desktop) SetEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (d *Desktop) IsEnabled() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.enabled
}

// Alert shows a prominent notification, falling back to a regular one.
func (d *Desktop) Alert(message string) {
	if !d.IsEnabled() {
		return
	}

	title := "Сравнение файлов"
	if err := d.alert(title, message); err != nil {
		if err := d.notify(title, message); err != nil {
			d.logger.Error().Err(err).Str("message", message).Msg("Failed to send alert notification")
		}
	}
}

// DocumentReady announces that the comparison result was written.
func (d *Desktop) DocumentReady(title, path string) {
	if !d.IsEnabled() {
		return
	}

	message := fmt.Sprintf("%s\n%s", truncate(title, 60), shortenPath(path))
	if err := d.notify("Сравнение готово", message); err != nil {
		d.logger.Warn().Err(err).Str("path", path).Msg("Failed to send document notification")
	}
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}

// shortenPath abbreviates a long path to its last two components.
func shortenPath(path string) string {
	const maxLen = 60

	if len(path) <= maxLen {
		return path
	}

	short := filepath.Join("...", filepath.Base(filepath.Dir(path)), filepath.Base(path))
	if len(short) > maxLen {
		return "..." + path[len(path)-(maxLen-3):]
	}
	return short
}
