// Package diskspace checks that a directory can take a file before it is written.
package diskspace

import (
	"errors"
	"fmt"

	"github.com/kyaw-zaya123/checking/internal/util/humanize"
)

// SafetyMargin is applied to every requested size.
const SafetyMargin = 1.1

// InsufficientSpaceError reports a filesystem that cannot hold the file.
type InsufficientSpaceError struct {
	Dir            string
	RequiredBytes  int64
	AvailableBytes int64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space in %s: need %s, have %s",
		e.Dir, humanize.FormatSize(e.RequiredBytes), humanize.FormatSize(e.AvailableBytes))
}

// Check returns an InsufficientSpaceError when dir has less than
// size*SafetyMargin bytes free. When free space cannot be determined
// the write is allowed to proceed and fail on its own.
func Check(dir string, size int64) error {
	available, ok := Available(dir)
	if !ok {
		return nil
	}
	return compare(dir, size, available)
}

func compare(dir string, size, available int64) error {
	required := int64(float64(size) * SafetyMargin)
	if available < required {
		return &InsufficientSpaceError{Dir: dir, RequiredBytes: required, AvailableBytes: available}
	}
	return nil
}

// IsInsufficientSpace reports whether err is or wraps an InsufficientSpaceError.
func IsInsufficientSpace(err error) bool {
	var target *InsufficientSpaceError
	return errors.As(err, &target)
}
