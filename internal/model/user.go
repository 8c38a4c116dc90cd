package model

import (
	"time"
)

type User struct {
	ID           string       `db:"id"`
	Name         string       `db:"name"`
	Email        string       `db:"email"`
	Phone        string       `db:"phone"`
	PasswordHash string       `db:"password_hash"`
	Role         Role         `db:"role"`
	IsVerified   bool         `db:"is_verified"`
	OTPCode      *string      `db:"otp_code"`
	OTPPurpose   *CodePurpose `db:"otp_purpose"`
	OTPExpiresAt *time.Time   `db:"otp_expires_at"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

// PublicUser is the projection of a User that may leave the server.
type PublicUser struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	IsVerified *bool  `json:"isVerified,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// PublicWithVerification includes the verification flag, as returned on registration.
func (u *User) PublicWithVerification() PublicUser {
	p := u.Public()
	verified := u.IsVerified
	p.IsVerified = &verified
	return p
}

// SetOTP stores a one-time code; code, purpose and expiry are always set together.
func (u *User) SetOTP(code string, purpose CodePurpose, expiresAt time.Time) {
	u.OTPCode = &code
	u.OTPPurpose = &purpose
	u.OTPExpiresAt = &expiresAt
}

func (u *User) ClearOTP() {
	u.OTPCode = nil
	u.OTPPurpose = nil
	u.OTPExpiresAt = nil
}

func (u *User) HasOTP() bool {
	return u.OTPCode != nil && u.OTPPurpose != nil && u.OTPExpiresAt != nil
}

// OTPMatches reports whether the stored code equals code, was issued for purpose
// and has not expired at now.
func (u *User) OTPMatches(code string, purpose CodePurpose, now time.Time) bool {
	if !u.HasOTP() || code == "" {
		return false
	}
	if *u.OTPPurpose != purpose {
		return false
	}
	if now.After(*u.OTPExpiresAt) {
		return false
	}
	return constantTimeEqual(*u.OTPCode, code)
}
