package cli

import (
	"github.com/kyaw-zaya123/checking/internal/form"
	"github.com/kyaw-zaya123/checking/internal/logging"
)

// consoleSurface reports accepted selections as log lines. The upload
// command has no widgets to keep in sync, so everything else is ignored.
type consoleSurface struct {
	form.NopSurface
	logger *logging.Logger
	names  map[int]string
}

func newConsoleSurface(logger *logging.Logger) *consoleSurface {
	return &consoleSurface{logger: logger, names: make(map[int]string)}
}

func (s *consoleSurface) SelectionChanged(index int, fileName string) {
	s.names[index] = fileName
}

func (s *consoleSurface) SetSizeLabel(index int, text string) {
	if text == "" {
		return
	}
	s.logger.Info().
		Int("slot", index).
		Str("file", s.names[index]).
		Str("size", text).
		Msg("File selected")
}
