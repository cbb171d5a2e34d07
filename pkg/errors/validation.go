package errors

import (
	"strings"
	"unicode"
)

// maxStrainNameLength bounds strain names accepted from the CLI and the API.
const maxStrainNameLength = 256

// ValidateStrainName validates a strain name supplied by a user.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No commas (the CLI uses them as list separators)
//   - No leading or trailing whitespace
//   - Maximum length of 256 characters
func ValidateStrainName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidStrainSet, "strain name cannot be empty")
	}
	if len(name) > maxStrainNameLength {
		return New(ErrCodeInvalidStrainSet, "strain name too long (max %d characters)", maxStrainNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidStrainSet, "strain name contains invalid control characters")
		}
	}
	if strings.Contains(name, ",") {
		return New(ErrCodeInvalidStrainSet, "strain name cannot contain commas: %q", name)
	}
	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidStrainSet, "strain name has surrounding whitespace: %q", name)
	}
	return nil
}

// ValidatePath validates a user-supplied file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}
	return nil
}
