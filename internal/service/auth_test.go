package service

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/internnepal/jobboard/internal/model"
	"github.com/stretchr/testify/require"
)

var sixDigits = regexp.MustCompile(`^[0-9]{6}$`)

func otherCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.svc.Register(ctx, RegisterInput{
		Name:     "  Alice ",
		Email:    "Alice@Example.com",
		Password: "Passw0rd!",
		Phone:    "+977 981-2345678",
	})
	require.NoError(t, err)
	require.Equal(t, "Alice", user.Name)
	require.Equal(t, "alice@example.com", user.Email)
	require.Equal(t, "9812345678", user.Phone)
	require.Equal(t, model.RoleStudent, user.Role)
	require.False(t, user.IsVerified)

	stored, err := env.store.Users.ByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "Passw0rd!", stored.PasswordHash)
	require.True(t, env.creds.VerifyPassword("Passw0rd!", stored.PasswordHash))

	require.True(t, stored.HasOTP())
	require.Regexp(t, sixDigits, *stored.OTPCode)
	require.Equal(t, model.CodePurposeEmailVerify, *stored.OTPPurpose)
	require.WithinDuration(t, env.clock.Now().Add(600*time.Second), *stored.OTPExpiresAt, time.Second)

	env.svc.Wait()
	emails := env.notifier.emails()
	require.Len(t, emails, 1)
	require.Equal(t, "alice@example.com", emails[0].To)
	require.Equal(t, "Verify your InternNepal account", emails[0].Subject)
	require.Contains(t, emails[0].Body, *stored.OTPCode)
}

func TestRegisterExplicitRole(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.svc.Register(context.Background(), RegisterInput{
		Name:     "Acme Ltd",
		Email:    "hr@acme.com",
		Password: "Passw0rd!",
		Phone:    "9712345678",
		Role:     "company",
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleCompany, user.Role)
}

func TestRegisterValidation(t *testing.T) {
	valid := RegisterInput{Name: "Alice", Email: "a@x.com", Password: "Passw0rd!", Phone: "9812345678"}

	tests := []struct {
		name   string
		modify func(*RegisterInput)
		field  string
	}{
		{"short name", func(in *RegisterInput) { in.Name = "A" }, "name"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password = "Pa0!" }, "password"},
		{"password without special", func(in *RegisterInput) { in.Password = "Passw0rdd" }, "password"},
		{"password without digit", func(in *RegisterInput) { in.Password = "Password!" }, "password"},
		{"bad phone prefix", func(in *RegisterInput) { in.Phone = "9512345678" }, "phone"},
		{"short phone", func(in *RegisterInput) { in.Phone = "98123" }, "phone"},
		{"unknown role", func(in *RegisterInput) { in.Role = "superuser" }, "role"},
		{"first violation wins", func(in *RegisterInput) { in.Name = ""; in.Email = "bad" }, "name"},
	}

	env := newTestEnv(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.modify(&in)

			_, err := env.svc.Register(context.Background(), in)
			require.ErrorIs(t, err, ErrValidation)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			require.Equal(t, tt.field, vErr.Field)
		})
	}

	_, err := env.store.Users.ByEmail(context.Background(), "a@x.com")
	require.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com")

	_, err := env.svc.Register(context.Background(), RegisterInput{
		Name:     "Another Alice",
		Email:    "A@X.com",
		Password: "Different1?",
		Phone:    "9612345678",
		Role:     "company",
	})
	require.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestRegisterSucceedsWhenEmailFails(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.err = errors.New("smtp down")

	_, err := env.svc.Register(context.Background(), RegisterInput{
		Name:     "Alice",
		Email:    "a@x.com",
		Password: "Passw0rd!",
		Phone:    "9812345678",
	})
	require.NoError(t, err)
	env.svc.Wait()

	_, err = env.store.Users.ByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
}

func TestVerifyOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds exactly once", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")
		code := env.storedCode(t, "a@x.com")

		require.NoError(t, env.svc.VerifyOTP(ctx, "a@x.com", code))

		user, err := env.store.Users.ByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.True(t, user.IsVerified)
		require.False(t, user.HasOTP())

		require.ErrorIs(t, env.svc.VerifyOTP(ctx, "a@x.com", code), ErrAlreadyVerified)
	})

	t.Run("wrong code", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")
		code := env.storedCode(t, "a@x.com")

		require.ErrorIs(t, env.svc.VerifyOTP(ctx, "a@x.com", otherCode(code)), ErrInvalidCode)
		require.ErrorIs(t, env.svc.VerifyOTP(ctx, "a@x.com", ""), ErrInvalidCode)
	})

	t.Run("expired code", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")
		code := env.storedCode(t, "a@x.com")

		env.clock.Advance(10*time.Minute + time.Second)
		require.ErrorIs(t, env.svc.VerifyOTP(ctx, "a@x.com", code), ErrInvalidCode)
	})

	t.Run("code at the exact expiry instant still works", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")
		code := env.storedCode(t, "a@x.com")

		env.clock.Advance(10 * time.Minute)
		require.NoError(t, env.svc.VerifyOTP(ctx, "a@x.com", code))
	})

	t.Run("unknown email", func(t *testing.T) {
		env := newTestEnv(t)
		require.ErrorIs(t, env.svc.VerifyOTP(ctx, "nobody@x.com", "123456"), ErrNotFound)
	})

	t.Run("reset code cannot verify email", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")

		require.NoError(t, env.svc.RequestPasswordReset(ctx, "a@x.com"))
		resetCode := env.storedCode(t, "a@x.com")

		require.ErrorIs(t, env.svc.VerifyOTP(ctx, "a@x.com", resetCode), ErrInvalidCode)
	})
}

func TestResendOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("invalidates previous code", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")
		first := env.storedCode(t, "a@x.com")

		env.clock.Advance(time.Minute)
		require.NoError(t, env.svc.ResendOTP(ctx, "a@x.com"))
		second := env.storedCode(t, "a@x.com")

		user, err := env.store.Users.ByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.Regexp(t, sixDigits, second)
		require.WithinDuration(t, env.clock.Now().Add(10*time.Minute), *user.OTPExpiresAt, time.Second)

		if first != second {
			require.ErrorIs(t, env.svc.VerifyOTP(ctx, "a@x.com", first), ErrInvalidCode)
		}
		require.NoError(t, env.svc.VerifyOTP(ctx, "a@x.com", second))

		emails := env.notifier.emails()
		require.Len(t, emails, 2)
		require.Equal(t, "Your new OTP for InternNepal", emails[1].Subject)
		require.Contains(t, emails[1].Body, second)
	})

	t.Run("already verified", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")
		require.NoError(t, env.svc.VerifyOTP(ctx, "a@x.com", env.storedCode(t, "a@x.com")))

		require.ErrorIs(t, env.svc.ResendOTP(ctx, "a@x.com"), ErrAlreadyVerified)
	})

	t.Run("unknown email", func(t *testing.T) {
		env := newTestEnv(t)
		require.ErrorIs(t, env.svc.ResendOTP(ctx, "nobody@x.com"), ErrNotFound)
	})

	t.Run("best effort ignores send failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")
		env.notifier.err = errors.New("smtp down")

		require.NoError(t, env.svc.ResendOTP(ctx, "a@x.com"))
	})

	t.Run("strict reports send failure and keeps the code", func(t *testing.T) {
		env := newTestEnv(t, func(o *AuthOptions) { o.StrictNotify = true })
		env.register(t, "a@x.com")
		env.notifier.err = errors.New("smtp down")

		err := env.svc.ResendOTP(ctx, "a@x.com")
		require.ErrorIs(t, err, ErrNotification)
		require.NotContains(t, err.Error(), env.storedCode(t, "a@x.com"))

		require.NoError(t, env.svc.VerifyOTP(ctx, "a@x.com", env.storedCode(t, "a@x.com")))
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")

		result, err := env.svc.Login(ctx, "A@x.com", "Passw0rd!")
		require.NoError(t, err)
		require.NotEmpty(t, result.Token)
		require.Equal(t, "a@x.com", result.User.Email)
		require.Equal(t, model.RoleStudent, result.User.Role)
		require.Nil(t, result.User.IsVerified)

		claims, err := env.creds.ParseAccessToken(result.Token, env.clock.Now())
		require.NoError(t, err)
		require.Equal(t, result.User.ID, claims.UserID)
		require.Equal(t, model.RoleStudent, claims.Role)
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")

		_, errWrong := env.svc.Login(ctx, "a@x.com", "Wr0ngpass!")
		_, errUnknown := env.svc.Login(ctx, "b@x.com", "Passw0rd!")

		require.ErrorIs(t, errWrong, ErrInvalidCredentials)
		require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		require.Equal(t, errWrong.Error(), errUnknown.Error())
	})

	t.Run("unverified allowed by default", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")

		_, err := env.svc.Login(ctx, "a@x.com", "Passw0rd!")
		require.NoError(t, err)
	})

	t.Run("unverified rejected when required", func(t *testing.T) {
		env := newTestEnv(t, func(o *AuthOptions) { o.RequireVerifiedLogin = true })
		env.register(t, "a@x.com")

		_, err := env.svc.Login(ctx, "a@x.com", "Wr0ngpass!")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = env.svc.Login(ctx, "a@x.com", "Passw0rd!")
		require.ErrorIs(t, err, ErrEmailNotVerified)

		require.NoError(t, env.svc.VerifyOTP(ctx, "a@x.com", env.storedCode(t, "a@x.com")))
		_, err = env.svc.Login(ctx, "a@x.com", "Passw0rd!")
		require.NoError(t, err)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "a@x.com")

	result, err := env.svc.Login(ctx, "a@x.com", "Passw0rd!")
	require.NoError(t, err)

	user, err := env.svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	require.Equal(t, result.User.ID, user.ID)

	_, err = env.svc.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, ErrInvalidAccessToken)

	env.clock.Advance(2 * time.Hour)
	_, err = env.svc.Authenticate(ctx, result.Token)
	require.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestRequestPasswordResetCode(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a reset code", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")

		require.NoError(t, env.svc.RequestPasswordReset(ctx, "a@x.com"))

		user, err := env.store.Users.ByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.Regexp(t, sixDigits, *user.OTPCode)
		require.Equal(t, model.CodePurposePasswordReset, *user.OTPPurpose)
		require.WithinDuration(t, env.clock.Now().Add(600*time.Second), *user.OTPExpiresAt, time.Second)

		emails := env.notifier.emails()
		require.Equal(t, "Password Reset OTP", emails[len(emails)-1].Subject)
		require.Contains(t, emails[len(emails)-1].Body, *user.OTPCode)
	})

	t.Run("unknown email", func(t *testing.T) {
		env := newTestEnv(t)
		require.ErrorIs(t, env.svc.RequestPasswordReset(ctx, "nobody@x.com"), ErrNotFound)
	})

	t.Run("unknown email concealed", func(t *testing.T) {
		env := newTestEnv(t, func(o *AuthOptions) { o.ConcealUnknownResetEmail = true })
		require.NoError(t, env.svc.RequestPasswordReset(ctx, "nobody@x.com"))
		require.Empty(t, env.notifier.emails())
	})

	t.Run("strict policy surfaces send failure", func(t *testing.T) {
		env := newTestEnv(t, func(o *AuthOptions) { o.StrictNotify = true })
		env.register(t, "a@x.com")
		env.notifier.err = errors.New("smtp down")

		require.ErrorIs(t, env.svc.RequestPasswordReset(ctx, "a@x.com"), ErrNotification)
	})
}

func TestVerifyResetOTP(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "a@x.com")
	verifyCode := env.storedCode(t, "a@x.com")

	// an email verification code is not a reset code
	require.ErrorIs(t, env.svc.VerifyResetOTP(ctx, "a@x.com", verifyCode), ErrInvalidCode)

	require.NoError(t, env.svc.RequestPasswordReset(ctx, "a@x.com"))
	code := env.storedCode(t, "a@x.com")

	require.NoError(t, env.svc.VerifyResetOTP(ctx, "a@x.com", code))
	require.NoError(t, env.svc.VerifyResetOTP(ctx, "a@x.com", code), "check must not consume the code")
	require.ErrorIs(t, env.svc.VerifyResetOTP(ctx, "a@x.com", otherCode(code)), ErrInvalidCode)
	require.ErrorIs(t, env.svc.VerifyResetOTP(ctx, "nobody@x.com", code), ErrNotFound)

	env.clock.Advance(11 * time.Minute)
	require.ErrorIs(t, env.svc.VerifyResetOTP(ctx, "a@x.com", code), ErrInvalidCode)
}

func TestResetPasswordWithCode(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")
		require.NoError(t, env.svc.RequestPasswordReset(ctx, "a@x.com"))
		code := env.storedCode(t, "a@x.com")

		err := env.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", Code: code, NewPassword: "N3wPassw0rd!"})
		require.NoError(t, err)

		user, err := env.store.Users.ByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.False(t, user.HasOTP())

		_, err = env.svc.Login(ctx, "a@x.com", "Passw0rd!")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = env.svc.Login(ctx, "a@x.com", "N3wPassw0rd!")
		require.NoError(t, err)

		err = env.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", Code: code, NewPassword: "An0therPass!"})
		require.ErrorIs(t, err, ErrInvalidOrExpired)
	})

	t.Run("uniform failures", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")
		verifyCode := env.storedCode(t, "a@x.com")

		inputs := []ResetPasswordInput{
			{Email: "a@x.com", Code: verifyCode, NewPassword: "N3wPassw0rd!"},
			{Email: "a@x.com", Code: "", NewPassword: "N3wPassw0rd!"},
			{Email: "nobody@x.com", Code: "123456", NewPassword: "N3wPassw0rd!"},
			{Email: "a@x.com", Token: "deadbeef", NewPassword: "N3wPassw0rd!"},
		}
		for _, in := range inputs {
			require.ErrorIs(t, env.svc.ResetPassword(ctx, in), ErrInvalidOrExpired)
		}
	})

	t.Run("weak new password keeps the code", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")
		require.NoError(t, env.svc.RequestPasswordReset(ctx, "a@x.com"))
		code := env.storedCode(t, "a@x.com")

		err := env.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", Code: code, NewPassword: "weak"})
		require.ErrorIs(t, err, ErrValidation)

		require.NoError(t, env.svc.VerifyResetOTP(ctx, "a@x.com", code))
	})

	t.Run("concurrent resets with the same code", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "a@x.com")
		require.NoError(t, env.svc.RequestPasswordReset(ctx, "a@x.com"))
		code := env.storedCode(t, "a@x.com")

		passwords := []string{"F1rstPass!", "S3condPass!"}
		errs := make([]error, len(passwords))

		var wg sync.WaitGroup
		start := make(chan struct{})
		for i, pw := range passwords {
			wg.Add(1)
			go func(i int, pw string) {
				defer wg.Done()
				<-start
				errs[i] = env.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", Code: code, NewPassword: pw})
			}(i, pw)
		}
		close(start)
		wg.Wait()

		winner := -1
		for i, err := range errs {
			if err == nil {
				require.Equal(t, -1, winner, "both resets succeeded")
				winner = i
				continue
			}
			require.ErrorIs(t, err, ErrInvalidOrExpired)
		}
		require.NotEqual(t, -1, winner, "no reset succeeded")

		user, err := env.store.Users.ByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.True(t, env.creds.VerifyPassword(passwords[winner], user.PasswordHash))
		require.False(t, env.creds.VerifyPassword(passwords[1-winner], user.PasswordHash))
	})
}

func TestResetPasswordWithLink(t *testing.T) {
	ctx := context.Background()
	linkMode := func(o *AuthOptions) { o.ResetMethod = ResetMethodLink }

	resetToken := func(t *testing.T, env *testEnv) string {
		t.Helper()
		emails := env.notifier.emails()
		require.NotEmpty(t, emails)
		last := emails[len(emails)-1]

		i := strings.Index(last.Body, "http://")
		require.GreaterOrEqual(t, i, 0)
		link := strings.Fields(last.Body[i:])[0]

		u, err := url.Parse(link)
		require.NoError(t, err)
		require.Equal(t, "/reset-password", u.Path)
		require.Equal(t, "a@x.com", u.Query().Get("email"))
		return u.Query().Get("token")
	}

	t.Run("success and single use", func(t *testing.T) {
		env := newTestEnv(t, linkMode)
		env.register(t, "a@x.com")
		require.NoError(t, env.svc.RequestPasswordReset(ctx, "a@x.com"))
		token := resetToken(t, env)
		require.Len(t, token, 64)

		err := env.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", Token: token, NewPassword: "N3wPassw0rd!"})
		require.NoError(t, err)

		_, err = env.svc.Login(ctx, "a@x.com", "N3wPassw0rd!")
		require.NoError(t, err)

		err = env.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", Token: token, NewPassword: "An0therPass!"})
		require.ErrorIs(t, err, ErrInvalidOrExpired)
	})

	t.Run("new request supersedes old token", func(t *testing.T) {
		env := newTestEnv(t, linkMode)
		env.register(t, "a@x.com")
		require.NoError(t, env.svc.RequestPasswordReset(ctx, "a@x.com"))
		first := resetToken(t, env)
		require.NoError(t, env.svc.RequestPasswordReset(ctx, "a@x.com"))
		second := resetToken(t, env)

		err := env.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", Token: first, NewPassword: "N3wPassw0rd!"})
		require.ErrorIs(t, err, ErrInvalidOrExpired)

		err = env.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", Token: second, NewPassword: "N3wPassw0rd!"})
		require.NoError(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		env := newTestEnv(t, linkMode)
		env.register(t, "a@x.com")
		require.NoError(t, env.svc.RequestPasswordReset(ctx, "a@x.com"))
		token := resetToken(t, env)

		env.clock.Advance(time.Hour + time.Second)
		err := env.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", Token: token, NewPassword: "N3wPassw0rd!"})
		require.ErrorIs(t, err, ErrInvalidOrExpired)
	})

	t.Run("token bound to its account", func(t *testing.T) {
		env := newTestEnv(t, linkMode)
		env.register(t, "a@x.com")
		env.register(t, "b@x.com")
		require.NoError(t, env.svc.RequestPasswordReset(ctx, "a@x.com"))
		token := resetToken(t, env)

		err := env.svc.ResetPassword(ctx, ResetPasswordInput{Email: "b@x.com", Token: token, NewPassword: "N3wPassw0rd!"})
		require.ErrorIs(t, err, ErrInvalidOrExpired)
	})

	t.Run("cleanup removes spent tokens", func(t *testing.T) {
		env := newTestEnv(t, linkMode)
		env.register(t, "a@x.com")
		require.NoError(t, env.svc.RequestPasswordReset(ctx, "a@x.com"))
		require.NoError(t, env.svc.RequestPasswordReset(ctx, "a@x.com"))

		env.clock.Advance(48 * time.Hour)
		n, err := env.svc.CleanupResetTokens(ctx, 24*time.Hour)
		require.NoError(t, err)
		require.EqualValues(t, 2, n)
	})
}

func TestScenarioRegisterVerifyLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	user, err := env.svc.Register(ctx, RegisterInput{Name: "Alice", Email: "a@x.com", Password: "Passw0rd!", Phone: "9812345678"})
	require.NoError(t, err)
	require.False(t, user.IsVerified)
	env.svc.Wait()

	require.NoError(t, env.svc.ResendOTP(ctx, "a@x.com"))
	code := env.storedCode(t, "a@x.com")

	require.ErrorIs(t, env.svc.VerifyOTP(ctx, "a@x.com", otherCode(code)), ErrInvalidCode)
	require.NoError(t, env.svc.VerifyOTP(ctx, "a@x.com", code))

	stored, err := env.store.Users.ByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, stored.IsVerified)

	result, err := env.svc.Login(ctx, "a@x.com", "Passw0rd!")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
}

func TestScenarioExpiredResetCode(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "a@x.com")

	require.NoError(t, env.svc.RequestPasswordReset(ctx, "a@x.com"))
	code := env.storedCode(t, "a@x.com")

	env.clock.Advance(10*time.Minute + time.Second)

	err := env.svc.ResetPassword(ctx, ResetPasswordInput{Email: "a@x.com", Code: code, NewPassword: "N3wPassw0rd!"})
	require.ErrorIs(t, err, ErrInvalidOrExpired)

	_, err = env.svc.Login(ctx, "a@x.com", "Passw0rd!")
	require.NoError(t, err)
}

func TestOutcomeLabel(t *testing.T) {
	require.Equal(t, "success", outcomeLabel(nil))
	require.Equal(t, "invalid_input", outcomeLabel(newValidationError("email", errors.New("bad"))))
	require.Equal(t, "invalid_code", outcomeLabel(ErrInvalidOrExpired))
	require.Equal(t, "error", outcomeLabel(storageError("get user", errors.New("disk full"))))
}
