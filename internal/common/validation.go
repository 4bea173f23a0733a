package common

import (
	"fmt"
	"slices"
	"strings"

	"resumescan/internal/errors"
)

// ValidateOutputFormat checks format against the supported list. An empty
// list accepts any format.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, format) {
		return nil
	}
	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported output format %q (supported: %s)", format, strings.Join(supportedFormats, ", ")), nil)
}
