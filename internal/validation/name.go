package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ValidateName validates a display name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}

	n := utf8.RuneCountInString(trimmed)
	if n < 2 {
		return errors.New("name must be at least 2 characters")
	}
	if n > 50 {
		return errors.New("name is too long (max 50 characters)")
	}

	return nil
}
