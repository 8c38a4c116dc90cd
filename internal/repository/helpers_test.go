package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/internnepal/jobboard/internal/db"
	"github.com/internnepal/jobboard/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := db.Init("sqlite", dsn)
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.RunMigrations(context.Background(), conn.DB, "sqlite"))
	return conn
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func newTestUser(email string) *model.User {
	return &model.User{
		ID:           uuid.New().String(),
		Name:         "Alice",
		Email:        email,
		Phone:        "9812345678",
		PasswordHash: "$2a$04$abcdefghijklmnopqrstuv",
		Role:         model.RoleStudent,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
}

func createUser(t *testing.T, repo UserRepository, email string) *model.User {
	t.Helper()
	user := newTestUser(email)
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}
