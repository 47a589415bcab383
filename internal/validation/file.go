// Package validation checks user input locally before anything is sent to
// the comparison server.
package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kyaw-zaya123/checking/internal/constants"
	"github.com/kyaw-zaya123/checking/internal/models"
	"github.com/kyaw-zaya123/checking/internal/util/humanize"
)

// ValidateFile returns the user-facing problems with a selected file.
// An empty result means the file is acceptable; a nil file is not an error here,
// the required-field rule is enforced by the form.
//
// Extension and size are both checked, so a file can report two errors.
func ValidateFile(file *models.FileDescriptor) []string {
	var errs []string
	if file == nil {
		return errs
	}

	if !slices.Contains(constants.AllowedExtensions, file.Extension()) {
		errs = append(errs, fmt.Sprintf("Неверный формат файла. Разрешенные форматы: %s",
			strings.Join(constants.AllowedExtensions, ", ")))
	}

	if file.Size > constants.MaxFileSize {
		errs = append(errs, fmt.Sprintf("Размер файла превышает %s",
			humanize.FormatSize(constants.MaxFileSize)))
	}

	return errs
}
