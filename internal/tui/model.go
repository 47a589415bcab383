// Package tui is the interactive comparison form. It renders the snapshots
// the engine publishes on the event bus and turns key presses into engine
// actions; it never touches the form state directly.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyaw-zaya123/checking/internal/events"
	"github.com/kyaw-zaya123/checking/internal/form"
	"github.com/kyaw-zaya123/checking/internal/models"
	"github.com/kyaw-zaya123/checking/internal/submit"
)

// Actions is the part of the engine the form drives.
type Actions interface {
	AddSlot() (bool, error)
	RemoveSlot() (bool, error)
	SelectPath(index int, path string) ([]string, error)
	SelectFile(index int, fd *models.FileDescriptor) ([]string, error)
	Submit() error
}

const inFlightMessage = "Отправка уже выполняется."

type eventMsg struct{ ev events.Event }

type busClosedMsg struct{}

func waitForEvent(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		if ch == nil {
			return nil
		}
		ev, ok := <-ch
		if !ok {
			return busClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}

// Model is the Bubble Tea model of the form.
type Model struct {
	actions Actions
	events  <-chan events.Event
	help    help.Model

	slots     []events.SlotView
	controls  form.Controls
	validated bool
	focus     int

	choosing bool
	input    textinput.Model

	progressVisible bool
	percent         int
	elapsed         string
	remaining       string
	bar             progress.Model

	alert  string
	status string

	document *events.DocumentEvent
	viewport viewport.Model

	quitting bool
}

// New creates the form model from the engine's current slots and controls.
func New(actions Actions, ch <-chan events.Event, slots []models.Slot, controls form.Controls) Model {
	input := textinput.New()
	input.Placeholder = "путь к файлу (.pdf, .docx, .txt)"
	input.CharLimit = 4096
	input.Width = 60

	m := Model{
		actions:  actions,
		events:   ch,
		help:     help.New(),
		controls: controls,
		focus:    1,
		input:    input,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		viewport: viewport.New(80, 20),
	}
	for _, s := range slots {
		v := events.SlotView{Index: s.Index, SizeLabel: s.SizeLabel}
		if s.HasFile() {
			v.FileName = s.File.Name
		}
		m.slots = append(m.slots, v)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = clamp(msg.Width-12, 10, 60)
		m.help.Width = msg.Width
		m.viewport.Width = max(msg.Width-4, 10)
		m.viewport.Height = max(msg.Height-6, 3)
		return m, nil

	case eventMsg:
		m.apply(msg.ev)
		return m, waitForEvent(m.events)

	case busClosedMsg:
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.document != nil:
			return m.updateDocument(msg)
		case m.choosing:
			return m.updateChoosing(msg)
		default:
			return m.updateForm(msg)
		}
	}
	return m, nil
}

func (m *Model) apply(ev events.Event) {
	switch ev := ev.(type) {
	case *events.FormEvent:
		m.slots = ev.Slots
		m.controls = form.Controls{
			AddEnabled:    ev.AddEnabled,
			RemoveEnabled: ev.RemoveEnabled,
			SubmitEnabled: ev.SubmitEnabled,
		}
		m.validated = ev.Validated
		if m.focus > len(m.slots) {
			m.focus = len(m.slots)
		}
		if m.focus < 1 {
			m.focus = 1
		}
	case *events.ProgressEvent:
		m.progressVisible = ev.Visible
		m.percent = ev.Percent
		m.elapsed = ev.Elapsed
		m.remaining = ev.Remaining
	case *events.NotificationEvent:
		m.alert = ev.Message
	case *events.DocumentEvent:
		m.document = ev
		m.viewport.SetContent(ev.Text)
		m.viewport.GotoTop()
	case *events.SubmissionEvent:
		m.status = ""
	}
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.focus > 1 {
			m.focus--
		}

	case key.Matches(msg, keys.Down):
		if m.focus < len(m.slots) {
			m.focus++
		}

	case key.Matches(msg, keys.Add):
		if !m.controls.AddEnabled {
			return m, nil
		}
		_, err := m.actions.AddSlot()
		m.setError(err)

	case key.Matches(msg, keys.Remove):
		if !m.controls.RemoveEnabled {
			return m, nil
		}
		_, err := m.actions.RemoveSlot()
		m.setError(err)

	case key.Matches(msg, keys.Clear):
		_, err := m.actions.SelectFile(m.focus, nil)
		m.setError(err)

	case key.Matches(msg, keys.Choose):
		m.choosing = true
		m.alert = ""
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, keys.Submit):
		if !m.controls.SubmitEnabled {
			return m, nil
		}
		m.alert = ""
		m.status = ""
		m.submitError(m.actions.Submit())
	}
	return m, nil
}

func (m *Model) submitError(err error) {
	var incomplete *form.IncompleteError
	var prep *submit.PreparationError
	switch {
	case err == nil:
	case errors.As(err, &incomplete):
		m.validated = true
	case errors.Is(err, submit.ErrInFlight):
		m.status = inFlightMessage
	case errors.As(err, &prep):
		// the alert arrives through the bus
	default:
		m.status = err.Error()
	}
}

func (m *Model) setError(err error) {
	if err != nil {
		m.status = err.Error()
	} else {
		m.status = ""
	}
}

func (m Model) updateChoosing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		m.choosing = false
		m.input.Blur()
		return m, nil

	case "enter":
		m.choosing = false
		m.input.Blur()
		path := strings.TrimSpace(m.input.Value())
		if path == "" {
			_, err := m.actions.SelectFile(m.focus, nil)
			m.setError(err)
			return m, nil
		}
		// validation messages come back as an alert on the bus
		_, err := m.actions.SelectPath(m.focus, path)
		m.setError(err)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateDocument(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.document != nil {
		return m.documentView()
	}
	return m.formView()
}

func (m Model) formView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Сравнение файлов"))
	b.WriteString("\n")

	var rows strings.Builder
	for i, s := range m.slots {
		if i > 0 {
			rows.WriteString("\n")
		}
		cursor := "  "
		label := fmt.Sprintf("Файл %d:", s.Index)
		if s.Index == m.focus {
			cursor = FocusStyle.Render("› ")
			label = FocusStyle.Render(label)
		}
		name := MutedStyle.Render("не выбран")
		if s.FileName != "" {
			name = s.FileName
		}
		rows.WriteString(cursor + label + " " + name)
		if s.SizeLabel != "" {
			rows.WriteString(" " + SizeStyle.Render("("+s.SizeLabel+")"))
		}
		if m.validated && s.FileName == "" {
			rows.WriteString("\n    " + ErrorStyle.Render(form.RequiredMessage))
		}
	}
	b.WriteString(BoxStyle.Render(rows.String()))
	b.WriteString("\n")

	if m.choosing {
		b.WriteString(fmt.Sprintf("Файл %d, путь: %s\n", m.focus, m.input.View()))
	}

	b.WriteString(strings.Join([]string{
		controlStyle(m.controls.AddEnabled).Render("[a] Добавить файл"),
		controlStyle(m.controls.RemoveEnabled).Render("[x] Удалить файл"),
		controlStyle(m.controls.SubmitEnabled).Render("[s] Отправить"),
	}, "  "))
	b.WriteString("\n")

	if m.progressVisible {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s %3d%%\n", m.bar.ViewAs(float64(m.percent)/100), m.percent))
		b.WriteString(MutedStyle.Render(m.elapsed + "   " + m.remaining))
		b.WriteString("\n")
	}

	if m.alert != "" {
		b.WriteString("\n" + ErrorStyle.Render(m.alert) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + ErrorStyle.Render(m.status) + "\n")
	}

	b.WriteString(HelpStyle.Render(m.help.ShortHelpView(keys.formHelp())))
	return b.String()
}

func (m Model) documentView() string {
	title := m.document.Title
	if title == "" {
		title = "Результат сравнения"
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(fmt.Sprintf("↑/↓ прокрутка • q выход • %s", m.document.Path)))
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
