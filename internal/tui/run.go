package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyaw-zaya123/checking/internal/events"
	"github.com/kyaw-zaya123/checking/internal/form"
	"github.com/kyaw-zaya123/checking/internal/models"
)

// Run shows the form until the user quits or ctx is cancelled.
func Run(ctx context.Context, actions Actions, bus *events.EventBus, slots []models.Slot, controls form.Controls) error {
	ch := bus.SubscribeAll()
	defer bus.UnsubscribeAll(ch)

	p := tea.NewProgram(
		New(actions, ch, slots, controls),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}
