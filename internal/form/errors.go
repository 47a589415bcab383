package form

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSuchSlot is returned when a selection targets a slot that does not exist.
var ErrNoSuchSlot = errors.New("no such slot")

// IncompleteError reports required slots left without a file.
type IncompleteError struct {
	Missing []int
}

func (e *IncompleteError) Error() string {
	idx := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		idx[i] = fmt.Sprintf("%d", m)
	}
	return fmt.Sprintf("form incomplete: no file selected for slot(s) %s", strings.Join(idx, ", "))
}

// RequiredMessage is the inline text shown next to an empty required slot.
const RequiredMessage = "Пожалуйста, выберите допустимый файл."
