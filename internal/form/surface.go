package form

// Controls is the enabled state of the add, remove and submit controls.
type Controls struct {
	AddEnabled    bool
	RemoveEnabled bool
	SubmitEnabled bool
}

// State is the derived form state that drives Controls.
type State struct {
	SlotCount          int
	HasAnyFileSelected bool
}

// Surface is the presentation layer holding the slot widgets and controls.
// The manager only writes to it; selections flow in through Manager.SelectFile.
type Surface interface {
	// SlotAdded creates the widget for a new slot.
	SlotAdded(index int)
	// SlotRemoved destroys the widget of the last slot.
	SlotRemoved(index int)
	// SetSizeLabel sets the size badge of a slot; empty clears it.
	SetSizeLabel(index int, text string)
	// SelectionChanged reflects the chosen file name; empty means no selection.
	SelectionChanged(index int, fileName string)
	// SetControls applies enable flags to add/remove/submit.
	SetControls(c Controls)
	// SetValidated toggles inline display of required-field errors.
	SetValidated(validated bool)
}

// NopSurface ignores every update.
type NopSurface struct{}

func (NopSurface) SlotAdded(int)                {}
func (NopSurface) SlotRemoved(int)              {}
func (NopSurface) SetSizeLabel(int, string)     {}
func (NopSurface) SelectionChanged(int, string) {}
func (NopSurface) SetControls(Controls)         {}
func (NopSurface) SetValidated(bool)            {}
