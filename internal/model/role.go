package model

import "crypto/subtle"

type Role string

const (
	RoleStudent Role = "student"
	RoleCompany Role = "company"
	RoleAdmin   Role = "admin"
)

const DefaultRole = RoleStudent

func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

// CodePurpose tags an outstanding one-time code so a code issued for one flow
// can never be redeemed in another.
type CodePurpose string

const (
	CodePurposeEmailVerify   CodePurpose = "email_verify"
	CodePurposePasswordReset CodePurpose = "password_reset"
)

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
