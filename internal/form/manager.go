// Package form owns the file slots of the comparison form and keeps the
// add, remove and submit controls consistent with them.
package form

import (
	"fmt"
	"strings"

	"github.com/kyaw-zaya123/checking/internal/constants"
	"github.com/kyaw-zaya123/checking/internal/logging"
	"github.com/kyaw-zaya123/checking/internal/models"
	"github.com/kyaw-zaya123/checking/internal/notify"
	"github.com/kyaw-zaya123/checking/internal/util/humanize"
	"github.com/kyaw-zaya123/checking/internal/validation"
)

// Manager holds the ordered slots. It is not safe for concurrent use;
// all calls are expected to come from the event loop.
type Manager struct {
	slots     []*models.Slot
	validated bool

	surface  Surface
	notifier notify.Notifier
	logger   *logging.Logger
}

// NewManager creates a form with a single empty slot and pushes the
// initial control state to the surface.
func NewManager(surface Surface, notifier notify.Notifier, logger *logging.Logger) *Manager {
	if surface == nil {
		surface = NopSurface{}
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	m := &Manager{surface: surface, notifier: notifier, logger: logger}
	m.appendSlot()
	m.refresh()
	return m
}

// AddSlot appends an empty slot. It is a no-op at MaxFiles.
func (m *Manager) AddSlot() bool {
	if len(m.slots) >= constants.MaxFiles {
		return false
	}
	m.appendSlot()
	m.refresh()
	return true
}

// RemoveSlot destroys the last slot together with its selection.
// It is a no-op when only one slot is left.
func (m *Manager) RemoveSlot() bool {
	if len(m.slots) <= 1 {
		return false
	}
	last := m.slots[len(m.slots)-1]
	m.slots = m.slots[:len(m.slots)-1]
	m.surface.SlotRemoved(last.Index)
	m.logger.Debug().Int("slot", last.Index).Msg("slot removed")
	m.refresh()
	return true
}

func (m *Manager) appendSlot() {
	slot := &models.Slot{Index: len(m.slots) + 1}
	m.slots = append(m.slots, slot)
	m.surface.SlotAdded(slot.Index)
	m.logger.Debug().Int("slot", slot.Index).Msg("slot added")
}

// SelectFile handles a file choice for a slot. A nil file clears the slot.
// An invalid file is rejected: the slot is cleared, the errors are shown
// to the user in one alert and returned. Controls are recomputed either way.
func (m *Manager) SelectFile(index int, file *models.FileDescriptor) ([]string, error) {
	slot, err := m.slot(index)
	if err != nil {
		return nil, err
	}
	defer m.refresh()

	if file == nil {
		m.clear(slot)
		return nil, nil
	}

	errs := validation.ValidateFile(file)
	if len(errs) > 0 {
		m.clear(slot)
		m.logger.Warn().
			Int("slot", index).
			Str("file", file.Name).
			Int64("size", file.Size).
			Strs("errors", errs).
			Msg("file rejected")
		m.notifier.Alert(strings.Join(errs, "\n"))
		return errs, nil
	}

	chosen := *file
	slot.File = &chosen
	slot.SizeLabel = humanize.FormatSize(chosen.Size)
	m.surface.SelectionChanged(index, chosen.Name)
	m.surface.SetSizeLabel(index, slot.SizeLabel)
	m.logger.Debug().Int("slot", index).Str("file", chosen.Name).Str("size", slot.SizeLabel).Msg("file selected")
	return nil, nil
}

func (m *Manager) clear(slot *models.Slot) {
	slot.File = nil
	slot.SizeLabel = ""
	m.surface.SelectionChanged(slot.Index, "")
	m.surface.SetSizeLabel(slot.Index, "")
}

func (m *Manager) slot(index int) (*models.Slot, error) {
	if index < 1 || index > len(m.slots) {
		return nil, fmt.Errorf("slot %d of %d: %w", index, len(m.slots), ErrNoSuchSlot)
	}
	return m.slots[index-1], nil
}

// State derives the current form state.
func (m *Manager) State() State {
	st := State{SlotCount: len(m.slots)}
	for _, s := range m.slots {
		if s.HasFile() {
			st.HasAnyFileSelected = true
			break
		}
	}
	return st
}

// Controls derives the control flags from State.
func (m *Manager) Controls() Controls {
	return controlsFor(m.State())
}

func controlsFor(st State) Controls {
	return Controls{
		AddEnabled:    st.SlotCount < constants.MaxFiles,
		RemoveEnabled: st.SlotCount > 1,
		SubmitEnabled: st.HasAnyFileSelected,
	}
}

func (m *Manager) refresh() {
	m.surface.SetControls(m.Controls())
}

// CheckValidity enforces the required-file rule on every slot.
func (m *Manager) CheckValidity() error {
	var missing []int
	for _, s := range m.slots {
		if !s.HasFile() {
			missing = append(missing, s.Index)
		}
	}
	if len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}
	return nil
}

// MarkValidated switches the surface to showing inline required-field errors.
func (m *Manager) MarkValidated() {
	m.validated = true
	m.surface.SetValidated(true)
}

// Slots returns a copy of the slots in order.
func (m *Manager) Slots() []models.Slot {
	out := make([]models.Slot, len(m.slots))
	for i, s := range m.slots {
		out[i] = *s
		if s.File != nil {
			f := *s.File
			out[i].File = &f
		}
	}
	return out
}

// SelectedFiles returns the chosen files in slot order, skipping empty slots.
func (m *Manager) SelectedFiles() []models.FileDescriptor {
	var files []models.FileDescriptor
	for _, s := range m.slots {
		if s.File != nil {
			files = append(files, *s.File)
		}
	}
	return files
}

// TotalSize sums the sizes of all selected files.
func (m *Manager) TotalSize() int64 {
	var total int64
	for _, s := range m.slots {
		if s.File != nil {
			total += s.File.Size
		}
	}
	return total
}
