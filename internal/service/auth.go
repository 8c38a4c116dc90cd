package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/internnepal/jobboard/internal/metrics"
	"github.com/internnepal/jobboard/internal/model"
	"github.com/internnepal/jobboard/internal/repository"
	"github.com/internnepal/jobboard/internal/validation"
)

// ResetMethod selects how RequestPasswordReset hands out the recovery secret.
type ResetMethod string

const (
	ResetMethodCode ResetMethod = "code"
	ResetMethodLink ResetMethod = "link"
)

// asyncNotifyTimeout bounds a background send that outlives the request.
const asyncNotifyTimeout = 30 * time.Second

type AuthOptions struct {
	AppName string
	AppURL  string

	OTPLength        int
	OTPExpiry        time.Duration
	ResetTokenExpiry time.Duration
	ResetMethod      ResetMethod

	// StrictNotify fails resend and reset requests whose email could not be sent.
	// The new code stays stored either way.
	StrictNotify             bool
	RequireVerifiedLogin     bool
	ConcealUnknownResetEmail bool

	// PasswordRule checks new passwords on registration and reset.
	PasswordRule func(password string) error

	// Clock defaults to time.Now in UTC.
	Clock func() time.Time
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     string
}

// ResetPasswordInput carries either a Code (code method) or a Token (link method).
type ResetPasswordInput struct {
	Email       string
	Code        string
	Token       string
	NewPassword string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      model.PublicUser
}

type AuthService struct {
	store       *repository.Store
	credentials *CredentialService
	notifier    Notifier
	opts        AuthOptions

	wg sync.WaitGroup
}

func NewAuthService(store *repository.Store, credentials *CredentialService, notifier Notifier, opts AuthOptions) *AuthService {
	if opts.OTPLength <= 0 {
		opts.OTPLength = DefaultCodeDigits
	}
	if opts.OTPExpiry <= 0 {
		opts.OTPExpiry = 10 * time.Minute
	}
	if opts.ResetTokenExpiry <= 0 {
		opts.ResetTokenExpiry = time.Hour
	}
	if opts.ResetMethod == "" {
		opts.ResetMethod = ResetMethodCode
	}
	if opts.PasswordRule == nil {
		opts.PasswordRule = validation.DefaultPasswordPolicy().Validate
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}

	return &AuthService{
		store:       store,
		credentials: credentials,
		notifier:    notifier,
		opts:        opts,
	}
}

// Wait blocks until every background email has been handed to the notifier.
func (s *AuthService) Wait() {
	s.wg.Wait()
}

func (s *AuthService) now() time.Time {
	return s.opts.Clock().UTC()
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (user *model.User, err error) {
	defer func() { recordOutcome("register", err) }()

	name := strings.TrimSpace(in.Name)
	email := validation.NormalizeEmail(in.Email)
	phone := validation.NormalizePhone(in.Phone)
	role := strings.TrimSpace(strings.ToLower(in.Role))

	if err := validation.ValidateName(name); err != nil {
		return nil, newValidationError("name", err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, newValidationError("email", err)
	}
	if err := s.opts.PasswordRule(in.Password); err != nil {
		return nil, newValidationError("password", err)
	}
	if err := validation.ValidatePhone(phone); err != nil {
		return nil, newValidationError("phone", err)
	}
	if err := validation.ValidateRole(role); err != nil {
		return nil, newValidationError("role", err)
	}
	if role == "" {
		role = string(model.DefaultRole)
	}

	_, err = s.store.Users.ByEmail(ctx, email)
	if err == nil {
		return nil, ErrDuplicateAccount
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, storageError("check existing user", err)
	}

	passwordHash, err := s.credentials.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	code, err := s.credentials.GenerateNumericCode(s.opts.OTPLength)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user = &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Role:         model.Role(role),
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	user.SetOTP(code, model.CodePurposeEmailVerify, now.Add(s.opts.OTPExpiry))

	err = s.store.Users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateAccount
		}
		return nil, storageError("create user", err)
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email, "role", user.Role)

	subject, body := verificationEmailTemplate(user.Name, code, s.opts.OTPExpiry, s.opts.AppName)
	s.notifyAsync("verification", user.Email, subject, body)

	return user, nil
}

func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (err error) {
	defer func() { recordOutcome("verify_otp", err) }()

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	now := s.now()
	if !user.OTPMatches(strings.TrimSpace(code), model.CodePurposeEmailVerify, now) {
		return ErrInvalidCode
	}

	err = s.store.Users.MarkVerified(ctx, user.ID, *user.OTPCode, now)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrInvalidCode
		}
		return storageError("mark user verified", err)
	}

	slog.Info("email verified", "user_id", user.ID, "email", user.Email)
	return nil
}

func (s *AuthService) ResendOTP(ctx context.Context, email string) (err error) {
	defer func() { recordOutcome("resend_otp", err) }()

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := s.issueCode(ctx, user, model.CodePurposeEmailVerify)
	if err != nil {
		return err
	}

	subject, body := resendOTPEmailTemplate(code, s.opts.OTPExpiry, s.opts.AppName)
	return s.notify(ctx, "resend_otp", user.Email, subject, body)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (result *LoginResult, err error) {
	defer func() { recordOutcome("login", err) }()

	email = validation.NormalizeEmail(email)

	user, err := s.store.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.credentials.burnPasswordCheck(password)
			return nil, ErrInvalidCredentials
		}
		return nil, storageError("get user", err)
	}

	if !s.credentials.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if s.opts.RequireVerifiedLogin && !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	token, expiresAt, err := s.credentials.IssueAccessToken(user, s.now())
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in", "user_id", user.ID)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Public(),
	}, nil
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (err error) {
	defer func() { recordOutcome("request_password_reset", err) }()

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) && s.opts.ConcealUnknownResetEmail {
			slog.Info("password reset requested for unknown email", "email", validation.NormalizeEmail(email))
			return nil
		}
		return err
	}

	if s.opts.ResetMethod == ResetMethodLink {
		return s.sendResetLink(ctx, user)
	}

	code, err := s.issueCode(ctx, user, model.CodePurposePasswordReset)
	if err != nil {
		return err
	}

	slog.Info("password reset code issued", "user_id", user.ID)

	subject, body := passwordResetCodeEmailTemplate(code, s.opts.OTPExpiry, s.opts.AppName)
	return s.notify(ctx, "password_reset_code", user.Email, subject, body)
}

func (s *AuthService) sendResetLink(ctx context.Context, user *model.User) error {
	tokenString, err := s.credentials.GenerateOpaqueToken(DefaultTokenByteCount)
	if err != nil {
		return err
	}

	now := s.now()
	token := &model.PasswordResetToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     tokenString,
		ExpiresAt: now.Add(s.opts.ResetTokenExpiry),
		CreatedAt: now,
	}

	err = s.store.InTx(ctx, func(_ repository.UserRepository, tokens repository.TokenRepository) error {
		err := tokens.InvalidateAll(ctx, user.ID, now)
		if err != nil {
			return err
		}
		return tokens.Create(ctx, token)
	})
	if err != nil {
		return storageError("create reset token", err)
	}

	slog.Info("password reset link issued", "user_id", user.ID)

	resetURL := passwordResetURL(s.opts.AppURL, tokenString, user.Email)
	subject, body := passwordResetLinkEmailTemplate(resetURL, s.opts.ResetTokenExpiry, s.opts.AppName)
	return s.notify(ctx, "password_reset_link", user.Email, subject, body)
}

// VerifyResetOTP only checks the code; it never changes state.
func (s *AuthService) VerifyResetOTP(ctx context.Context, email, code string) (err error) {
	defer func() { recordOutcome("verify_reset_otp", err) }()

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}

	if !user.OTPMatches(strings.TrimSpace(code), model.CodePurposePasswordReset, s.now()) {
		return ErrInvalidCode
	}

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) (err error) {
	defer func() { recordOutcome("reset_password", err) }()

	user, err := s.userByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidOrExpired
		}
		return err
	}

	code := strings.TrimSpace(in.Code)
	token := strings.TrimSpace(in.Token)

	now := s.now()
	if token == "" && !user.OTPMatches(code, model.CodePurposePasswordReset, now) {
		return ErrInvalidOrExpired
	}

	if err := s.opts.PasswordRule(in.NewPassword); err != nil {
		return newValidationError("newPassword", err)
	}

	passwordHash, err := s.credentials.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}

	if token != "" {
		err = s.store.InTx(ctx, func(users repository.UserRepository, tokens repository.TokenRepository) error {
			_, err := tokens.Consume(ctx, user.ID, token, now)
			if err != nil {
				return err
			}
			return users.UpdatePassword(ctx, user.ID, passwordHash, now)
		})
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrInvalidOrExpired
		}
	} else {
		err = s.store.Users.ResetPasswordWithOTP(ctx, user.ID, code, passwordHash, now)
		if errors.Is(err, repository.ErrConflict) {
			return ErrInvalidOrExpired
		}
	}
	if err != nil {
		return storageError("reset password", err)
	}

	slog.Info("password reset", "user_id", user.ID)
	return nil
}

// Authenticate resolves a bearer token to the account it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (*model.User, error) {
	claims, err := s.credentials.ParseAccessToken(bearer, s.now())
	if err != nil {
		return nil, err
	}

	user, err := s.store.Users.ByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidAccessToken
		}
		return nil, storageError("get user", err)
	}

	return user, nil
}

// CleanupResetTokens deletes reset tokens that were used or expired more than olderThan ago.
func (s *AuthService) CleanupResetTokens(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.store.Tokens.CleanupExpired(ctx, olderThan, s.now())
	if err != nil {
		return 0, storageError("cleanup reset tokens", err)
	}
	return n, nil
}

func (s *AuthService) userByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.store.Users.ByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("get user", err)
	}
	return user, nil
}

// issueCode stores a fresh code for purpose, replacing any outstanding one.
func (s *AuthService) issueCode(ctx context.Context, user *model.User, purpose model.CodePurpose) (string, error) {
	code, err := s.credentials.GenerateNumericCode(s.opts.OTPLength)
	if err != nil {
		return "", err
	}

	now := s.now()
	err = s.store.Users.SetOTP(ctx, user.ID, code, purpose, now.Add(s.opts.OTPExpiry), now)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrNotFound
		}
		return "", storageError("store otp", err)
	}

	return code, nil
}

func (s *AuthService) notify(ctx context.Context, kind, to, subject, body string) error {
	err := s.notifier.Send(ctx, to, subject, body)
	metrics.RecordNotification(kind, err)
	if err == nil {
		return nil
	}

	slog.Warn("failed to send email", "type", kind, "to", to, "error", err)
	if s.opts.StrictNotify {
		return fmt.Errorf("%w: %v", ErrNotification, err)
	}
	return nil
}

func (s *AuthService) notifyAsync(kind, to, subject, body string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), asyncNotifyTimeout)
		defer cancel()

		err := s.notifier.Send(ctx, to, subject, body)
		metrics.RecordNotification(kind, err)
		if err != nil {
			slog.Error("failed to send email", "type", kind, "to", to, "error", err)
		}
	}()
}

func recordOutcome(operation string, err error) {
	metrics.RecordAuth(operation, outcomeLabel(err))
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrValidation):
		return "invalid_input"
	case errors.Is(err, ErrDuplicateAccount):
		return "duplicate"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrInvalidCode), errors.Is(err, ErrInvalidOrExpired):
		return "invalid_code"
	case errors.Is(err, ErrAlreadyVerified):
		return "already_verified"
	case errors.Is(err, ErrEmailNotVerified):
		return "not_verified"
	case errors.Is(err, ErrNotification):
		return "notification_failed"
	default:
		return "error"
	}
}
