package common

import (
	"fmt"
	"slices"
	"strings"

	"wazivo/internal/errors"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// GetSupportedFormats returns the list of supported formats
func GetSupportedFormats(supportedFormats []string) []string {
	return supportedFormats
}

// ValidateSourceInput requires exactly one of a file or a URL
func ValidateSourceInput(input SourceInput) error {
	hasFile := strings.TrimSpace(input.File) != ""
	hasURL := strings.TrimSpace(input.URL) != ""

	switch {
	case hasFile && hasURL:
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "use either --file or --url, not both", nil)
	case !hasFile && !hasURL:
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "a CV is required: pass --file or --url", nil)
	}
	return nil
}
