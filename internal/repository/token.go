package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/internnepal/jobboard/internal/db"
	"github.com/internnepal/jobboard/internal/model"
)

var (
	ErrTokenNotFound = errors.New("token not found")
)

type TokenRepository interface {
	Create(ctx context.Context, token *model.PasswordResetToken) error
	Consume(ctx context.Context, userID, token string, now time.Time) (*model.PasswordResetToken, error)
	InvalidateAll(ctx context.Context, userID string, now time.Time) error
	ListByUser(ctx context.Context, userID string) ([]model.PasswordResetToken, error)
	CleanupExpired(ctx context.Context, olderThan time.Duration, now time.Time) (int64, error)
}

type tokenRepository struct {
	db db.DBTX
}

func NewTokenRepository(db db.DBTX) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO password_reset_tokens (id, user_id, token, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.ExpiresAt,
		token.Used,
		token.CreatedAt,
	)
	return err
}

// Consume atomically marks the token used and returns it.
// Only the first of several concurrent callers succeeds, the rest get ErrTokenNotFound.
// Tokens that are unknown, owned by another user, already used or expired are
// reported the same way.
func (r *tokenRepository) Consume(ctx context.Context, userID, token string, now time.Time) (*model.PasswordResetToken, error) {
	query := `
		UPDATE password_reset_tokens
		SET used = TRUE, used_at = $1
		WHERE token = $2
		AND user_id = $3
		AND used = FALSE
		AND expires_at >= $4
	`
	result, err := r.db.ExecContext(ctx, query, now, token, userID, now)
	if err != nil {
		return nil, err
	}
	err = expectOneRow(result, ErrTokenNotFound)
	if err != nil {
		return nil, err
	}

	var t model.PasswordResetToken
	query = `
		SELECT id, user_id, token, expires_at, used, used_at, created_at
		FROM password_reset_tokens
		WHERE token = $1
	`
	err = r.db.GetContext(ctx, &t, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// InvalidateAll marks every outstanding token of the user as used.
func (r *tokenRepository) InvalidateAll(ctx context.Context, userID string, now time.Time) error {
	query := `UPDATE password_reset_tokens SET used = TRUE, used_at = $1 WHERE user_id = $2 AND used = FALSE`
	_, err := r.db.ExecContext(ctx, query, now, userID)
	return err
}

func (r *tokenRepository) ListByUser(ctx context.Context, userID string) ([]model.PasswordResetToken, error) {
	tokens := []model.PasswordResetToken{}
	query := `
		SELECT id, user_id, token, expires_at, used, used_at, created_at
		FROM password_reset_tokens
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	err := r.db.SelectContext(ctx, &tokens, query, userID)
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// CleanupExpired removes used and expired tokens older than the given duration.
// Tokens are not deleted automatically, so this is meant for a periodic job.
func (r *tokenRepository) CleanupExpired(ctx context.Context, olderThan time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-olderThan)
	query := `
		DELETE FROM password_reset_tokens
		WHERE (used = TRUE AND used_at < $1)
		   OR (expires_at < $2)
	`
	result, err := r.db.ExecContext(ctx, query, cutoff, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
