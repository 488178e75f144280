package errors

import (
	"strings"
	"unicode"
)

// ValidateName validates a matrix name for safety and correctness.
// Names become file path components (<source>/<name>.npz, <dest>/<name>.png),
// so anything that could escape the configured directories is rejected.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "matrix name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "matrix name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "matrix name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "matrix name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateNames validates every name in a render list.
// The first invalid name aborts validation.
func ValidateNames(names []string) error {
	if len(names) == 0 {
		return New(ErrCodeInvalidInput, "at least one matrix name is required")
	}
	for _, n := range names {
		if err := ValidateName(n); err != nil {
			return err
		}
	}
	return nil
}
