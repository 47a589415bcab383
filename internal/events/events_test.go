package events

import (
	"testing"
	"time"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventProgress)

	bus.PublishProgress(true, 42, "Прошло: 3 сек", "Осталось: 4 сек")

	select {
	case received := <-ch:
		progress, ok := received.(*ProgressEvent)
		if !ok {
			t.Fatal("Expected ProgressEvent")
		}
		if progress.Percent != 42 {
			t.Errorf("Expected percent 42, got %d", progress.Percent)
		}
		if !progress.Visible {
			t.Error("Expected progress surface to be visible")
		}
		if progress.Remaining != "Осталось: 4 сек" {
			t.Errorf("Unexpected remaining text %q", progress.Remaining)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
}

func TestEventBus_TypeFiltering(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	notifications := bus.Subscribe(EventNotification)
	all := bus.SubscribeAll()

	bus.PublishProgress(false, 0, "", "")
	bus.PublishNotification("hello")

	select {
	case ev := <-notifications:
		n, ok := ev.(*NotificationEvent)
		if !ok || n.Message != "hello" {
			t.Fatalf("Expected notification 'hello', got %#v", ev)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for notification")
	}

	got := 0
	for i := 0; i < 2; i++ {
		select {
		case <-all:
			got++
		case <-time.After(100 * time.Millisecond):
		}
	}
	if got != 2 {
		t.Errorf("Expected all-subscriber to receive 2 events, got %d", got)
	}
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	_ = bus.Subscribe(EventNotification)

	bus.PublishNotification("first")
	bus.PublishNotification("second")
	bus.PublishNotification("third")

	if dropped := bus.DroppedEventCount(); dropped != 2 {
		t.Errorf("Expected 2 dropped events, got %d", dropped)
	}
}

func TestEventBus_CloseClosesChannels(t *testing.T) {
	bus := NewEventBus(10)
	ch := bus.SubscribeAll()
	bus.Close()

	if _, ok := <-ch; ok {
		t.Error("Expected channel to be closed")
	}

	// Publishing after close must not panic
	bus.PublishNotification("after close")

	late := bus.Subscribe(EventForm)
	if _, ok := <-late; ok {
		t.Error("Expected subscription on closed bus to be closed")
	}
}

func TestEventBus_UnsubscribeAll(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventDocument)
	bus.UnsubscribeAll(ch)

	if _, ok := <-ch; ok {
		t.Error("Expected unsubscribed channel to be closed")
	}

	// Must not panic on send to a removed channel
	bus.Publish(&DocumentEvent{BaseEvent: BaseEvent{EventType: EventDocument, Time: time.Now()}})
}
