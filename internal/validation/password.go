package validation

import (
	"errors"
	"fmt"
	"unicode"
)

// PasswordPolicy describes the minimum strength of a password.
// The zero value accepts any non-empty password up to 72 bytes.
type PasswordPolicy struct {
	MinLength      int
	MaxLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

// DefaultPasswordPolicy requires 8+ characters with upper, lower, digit and special characters.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:      8,
		MaxLength:      72,
		RequireUpper:   true,
		RequireLower:   true,
		RequireDigit:   true,
		RequireSpecial: true,
	}
}

// Validate returns the first rule the password violates.
func (p PasswordPolicy) Validate(password string) error {
	if password == "" {
		return errors.New("password is required")
	}

	if p.MinLength > 0 && len([]rune(password)) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters", p.MinLength)
	}

	// bcrypt silently truncates passwords longer than 72 bytes
	maxLength := p.MaxLength
	if maxLength <= 0 || maxLength > 72 {
		maxLength = 72
	}
	if len(password) > maxLength {
		return fmt.Errorf("password must not exceed %d characters", maxLength)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsSpace(r):
			hasSpecial = true
		}
	}

	if p.RequireUpper && !hasUpper {
		return errors.New("password must include an uppercase letter")
	}
	if p.RequireLower && !hasLower {
		return errors.New("password must include a lowercase letter")
	}
	if p.RequireDigit && !hasDigit {
		return errors.New("password must include a number")
	}
	if p.RequireSpecial && !hasSpecial {
		return errors.New("password must include a special character")
	}

	return nil
}
