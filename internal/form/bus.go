package form

import (
	"time"

	"github.com/kyaw-zaya123/checking/internal/events"
)

// BusSurface keeps a snapshot of the slot widgets and publishes a
// FormEvent after every change, for presentation layers that run outside
// the event loop.
type BusSurface struct {
	bus       *events.EventBus
	slots     []events.SlotView
	controls  Controls
	validated bool
}

// NewBusSurface creates a surface publishing to bus.
func NewBusSurface(bus *events.EventBus) *BusSurface {
	return &BusSurface{bus: bus}
}

func (s *BusSurface) SlotAdded(index int) {
	s.slots = append(s.slots, events.SlotView{Index: index})
	s.publish()
}

func (s *BusSurface) SlotRemoved(index int) {
	if n := len(s.slots); n > 0 && s.slots[n-1].Index == index {
		s.slots = s.slots[:n-1]
	}
	s.publish()
}

func (s *BusSurface) SetSizeLabel(index int, text string) {
	if v := s.view(index); v != nil {
		v.SizeLabel = text
	}
	s.publish()
}

func (s *BusSurface) SelectionChanged(index int, fileName string) {
	if v := s.view(index); v != nil {
		v.FileName = fileName
	}
	s.publish()
}

func (s *BusSurface) SetControls(c Controls) {
	s.controls = c
	s.publish()
}

func (s *BusSurface) SetValidated(validated bool) {
	s.validated = validated
	s.publish()
}

func (s *BusSurface) view(index int) *events.SlotView {
	for i := range s.slots {
		if s.slots[i].Index == index {
			return &s.slots[i]
		}
	}
	return nil
}

func (s *BusSurface) publish() {
	if s.bus == nil {
		return
	}
	s.bus.Publish(&events.FormEvent{
		BaseEvent:     events.BaseEvent{EventType: events.EventForm, Time: time.Now()},
		Slots:         append([]events.SlotView(nil), s.slots...),
		AddEnabled:    s.controls.AddEnabled,
		RemoveEnabled: s.controls.RemoveEnabled,
		SubmitEnabled: s.controls.SubmitEnabled,
		Validated:     s.validated,
	})
}

// MultiSurface fans updates out to several surfaces.
type MultiSurface []Surface

func (m MultiSurface) SlotAdded(index int) {
	for _, s := range m {
		s.SlotAdded(index)
	}
}

func (m MultiSurface) SlotRemoved(index int) {
	for _, s := range m {
		s.SlotRemoved(index)
	}
}

func (m MultiSurface) SetSizeLabel(index int, text string) {
	for _, s := range m {
		s.SetSizeLabel(index, text)
	}
}

func (m MultiSurface) SelectionChanged(index int, fileName string) {
	for _, s := range m {
		s.SelectionChanged(index, fileName)
	}
}

func (m MultiSurface) SetControls(c Controls) {
	for _, s := range m {
		s.SetControls(c)
	}
}

func (m MultiSurface) SetValidated(validated bool) {
	for _, s := range m {
		s.SetValidated(validated)
	}
}
