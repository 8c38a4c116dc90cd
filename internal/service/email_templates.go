package service

import (
	"fmt"
	"net/url"
	"time"
)

func verificationEmailTemplate(name, code string, ttl time.Duration, appName string) (string, string) {
	subject := fmt.Sprintf("Verify your %s account", appName)
	body := fmt.Sprintf(`Hi %s,

Your OTP for %s registration is: %s

This code will expire in %s.

If you didn't create an account, you can safely ignore this email.

Best,
The %s Team`, name, appName, code, humanDuration(ttl), appName)

	return subject, body
}

func resendOTPEmailTemplate(code string, ttl time.Duration, appName string) (string, string) {
	subject := fmt.Sprintf("Your new OTP for %s", appName)
	body := fmt.Sprintf(`Your new OTP is: %s

This code will expire in %s. Any code sent before this one no longer works.

Best,
The %s Team`, code, humanDuration(ttl), appName)

	return subject, body
}

func passwordResetCodeEmailTemplate(code string, ttl time.Duration, appName string) (string, string) {
	subject := "Password Reset OTP"
	body := fmt.Sprintf(`Your OTP for password reset is: %s

This code will expire in %s.

If you didn't request this, you can safely ignore this email. Your password won't be changed.

Best,
The %s Team`, code, humanDuration(ttl), appName)

	return subject, body
}

func passwordResetLinkEmailTemplate(resetURL string, ttl time.Duration, appName string) (string, string) {
	subject := fmt.Sprintf("Reset your password for %s", appName)
	body := fmt.Sprintf(`You requested to reset your password. Use this link to choose a new one:
%s

This link expires in %s and can only be used once.

If you didn't request this, you can safely ignore this email. Your password won't be changed.

Best,
The %s Team`, resetURL, humanDuration(ttl), appName)

	return subject, body
}

func passwordResetURL(appURL, token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return fmt.Sprintf("%s/reset-password?%s", appURL, q.Encode())
}

// humanDuration renders whole minutes and hours the way people write them.
func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	case d >= time.Minute && d%time.Minute == 0:
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	default:
		return d.String()
	}
}
