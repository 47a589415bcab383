// Package events carries state changes from the form core to presentation
// layers that run outside the event loop (the interactive form, bus displays).
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kyaw-zaya123/checking/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	EventProgress     EventType = "progress"
	EventForm         EventType = "form"
	EventNotification EventType = "notification"
	EventDocument     EventType = "document"
	EventSubmission   EventType = "submission"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// ProgressEvent mirrors the progress surface after each change.
type ProgressEvent struct {
	BaseEvent
	Visible   bool
	Percent   int
	Elapsed   string
	Remaining string
}

// SlotView is the presentation snapshot of one slot.
type SlotView struct {
	Index     int
	FileName  string
	SizeLabel string
}

// FormEvent mirrors the slot container and control flags after each mutation.
type FormEvent struct {
	BaseEvent
	Slots         []SlotView
	AddEnabled    bool
	RemoveEnabled bool
	SubmitEnabled bool
	Validated     bool
}

// NotificationEvent carries a user-facing alert.
type NotificationEvent struct {
	BaseEvent
	Message string
}

// DocumentEvent is published when the response document replaced the current one.
type DocumentEvent struct {
	BaseEvent
	Path  string
	Title string
	Text  string
}

// SubmissionEvent reports the terminal outcome of one submission attempt.
type SubmissionEvent struct {
	BaseEvent
	AttemptID string
	Err       error
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking.
// Events for a full subscriber are dropped and counted.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishProgress is a convenience method for publishing progress events
func (eb *EventBus) PublishProgress(visible bool, percent int, elapsed, remaining string) {
	eb.Publish(&ProgressEvent{
		BaseEvent: BaseEvent{EventType: EventProgress, Time: time.Now()},
		Visible:   visible,
		Percent:   percent,
		Elapsed:   elapsed,
		Remaining: remaining,
	})
}

// PublishNotification is a convenience method for publishing alerts
func (eb *EventBus) PublishNotification(message string) {
	eb.Publish(&NotificationEvent{
		BaseEvent: BaseEvent{EventType: EventNotification, Time: time.Now()},
		Message:   message,
	})
}

// PublishSubmission is a convenience method for publishing attempt outcomes
func (eb *EventBus) PublishSubmission(attemptID string, err error) {
	eb.Publish(&SubmissionEvent{
		BaseEvent: BaseEvent{EventType: EventSubmission, Time: time.Now()},
		AttemptID: attemptID,
		Err:       err,
	})
}

// UnsubscribeAll removes a subscription channel from all event types
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				close(subCh)
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				break
			}
		}
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			close(subCh)
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			break
		}
	}
}

// DroppedEventCount returns the total number of events dropped due to full buffers
func (eb *EventBus) DroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
