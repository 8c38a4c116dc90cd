package validation

import (
	"errors"
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^(96|97|98)[0-9]{8}$`)

// NormalizePhone strips whitespace, dashes and an optional +977 country prefix.
func NormalizePhone(phone string) string {
	p := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	return strings.TrimPrefix(p, "+977")
}

// ValidatePhone expects a normalized 10-digit mobile number starting with 96, 97 or 98.
func ValidatePhone(phone string) error {
	if phone == "" {
		return errors.New("phone number is required")
	}
	if len(phone) != 10 {
		return errors.New("phone number must be exactly 10 digits")
	}
	if !phonePattern.MatchString(phone) {
		return errors.New("phone number must be 10 digits and start with 96, 97, or 98")
	}
	return nil
}
