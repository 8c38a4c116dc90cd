package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/internnepal/jobboard/internal/db"
	"github.com/internnepal/jobboard/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrConflict means a conditional update found the record in a different
	// state than the caller read it in.
	ErrConflict = errors.New("record changed concurrently")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	SetOTP(ctx context.Context, userID, code string, purpose model.CodePurpose, expiresAt, now time.Time) error
	MarkVerified(ctx context.Context, userID, code string, now time.Time) error
	ResetPasswordWithOTP(ctx context.Context, userID, code, passwordHash string, now time.Time) error
	UpdatePassword(ctx context.Context, userID, passwordHash string, now time.Time) error
}

type userRepository struct {
	db db.DBTX
}

func NewUserRepository(db db.DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, phone, password_hash, role, is_verified, otp_code, otp_purpose, otp_expires_at, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.IsVerified,
		user.OTPCode,
		user.OTPPurpose,
		user.OTPExpiresAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Update replaces every mutable column of the record.
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET name = $1, phone = $2, password_hash = $3, role = $4, is_verified = $5,
		    otp_code = $6, otp_purpose = $7, otp_expires_at = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.IsVerified,
		user.OTPCode,
		user.OTPPurpose,
		user.OTPExpiresAt,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrUserNotFound)
}

// SetOTP overwrites any outstanding code. The previous code stops matching immediately.
func (r *userRepository) SetOTP(ctx context.Context, userID, code string, purpose model.CodePurpose, expiresAt, now time.Time) error {
	query := `
		UPDATE users
		SET otp_code = $1, otp_purpose = $2, otp_expires_at = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query, code, purpose, expiresAt, now, userID)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrUserNotFound)
}

// MarkVerified flips the verification flag and clears the code, but only while
// the account is unverified and still holds the given email_verify code.
// Exactly one of several concurrent callers succeeds; the others get ErrConflict.
func (r *userRepository) MarkVerified(ctx context.Context, userID, code string, now time.Time) error {
	query := `
		UPDATE users
		SET is_verified = TRUE, otp_code = NULL, otp_purpose = NULL, otp_expires_at = NULL, updated_at = $1
		WHERE id = $2
		AND is_verified = FALSE
		AND otp_code = $3
		AND otp_purpose = $4
	`
	result, err := r.db.ExecContext(ctx, query, now, userID, code, model.CodePurposeEmailVerify)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrConflict)
}

// ResetPasswordWithOTP stores a new password hash and clears the code in a single
// conditional update. Only the caller that still finds its password_reset code in
// place wins; every other concurrent caller gets ErrConflict.
func (r *userRepository) ResetPasswordWithOTP(ctx context.Context, userID, code, passwordHash string, now time.Time) error {
	query := `
		UPDATE users
		SET password_hash = $1, otp_code = NULL, otp_purpose = NULL, otp_expires_at = NULL, updated_at = $2
		WHERE id = $3
		AND otp_code = $4
		AND otp_purpose = $5
	`
	result, err := r.db.ExecContext(ctx, query, passwordHash, now, userID, code, model.CodePurposePasswordReset)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrConflict)
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash string, now time.Time) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, passwordHash, now, userID)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrUserNotFound)
}

func expectOneRow(result sql.Result, errNone error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errNone
	}
	return nil
}

// isUniqueViolation works for both SQLite and PostgreSQL error texts.
func isUniqueViolation(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value")
}
