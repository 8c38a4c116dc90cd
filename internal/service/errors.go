package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateAccount   = errors.New("user already exists")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidCode        = errors.New("invalid or expired OTP")
	ErrInvalidOrExpired   = errors.New("invalid or expired reset code")
	ErrAlreadyVerified    = errors.New("user already verified")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrCrypto             = errors.New("crypto failure")
	ErrStorage            = errors.New("storage failure")
	ErrNotification       = errors.New("failed to deliver notification")
)

// ValidationError reports the first input constraint a request violated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: err.Error()}
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStorage, err)
}

// IsInternal reports whether err must be hidden from the caller behind a generic message.
func IsInternal(err error) bool {
	if err == nil {
		return false
	}
	for _, known := range []error{
		ErrValidation,
		ErrDuplicateAccount,
		ErrNotFound,
		ErrInvalidCredentials,
		ErrInvalidCode,
		ErrInvalidOrExpired,
		ErrAlreadyVerified,
		ErrEmailNotVerified,
		ErrNotification,
		ErrInvalidAccessToken,
	} {
		if errors.Is(err, known) {
			return false
		}
	}
	return true
}
