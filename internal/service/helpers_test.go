package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/internnepal/jobboard/internal/db"
	"github.com/internnepal/jobboard/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret-that-is-at-least-32-bytes-long"

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeNotifier) emails() []sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentEmail(nil), f.sent...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

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

type testEnv struct {
	svc      *AuthService
	store    *repository.Store
	creds    *CredentialService
	notifier *fakeNotifier
	clock    *fakeClock
}

func newTestEnv(t *testing.T, configure ...func(*AuthOptions)) *testEnv {
	t.Helper()

	store := repository.NewStore(newTestDB(t))
	creds := NewCredentialService(testJWTSecret, time.Hour, bcrypt.MinCost)
	notifier := &fakeNotifier{}
	clock := newFakeClock()

	opts := AuthOptions{
		AppName:          "InternNepal",
		AppURL:           "http://localhost:3000",
		OTPLength:        6,
		OTPExpiry:        10 * time.Minute,
		ResetTokenExpiry: time.Hour,
		ResetMethod:      ResetMethodCode,
		Clock:            clock.Now,
	}
	for _, fn := range configure {
		fn(&opts)
	}

	svc := NewAuthService(store, creds, notifier, opts)
	t.Cleanup(svc.Wait)

	return &testEnv{svc: svc, store: store, creds: creds, notifier: notifier, clock: clock}
}

func (e *testEnv) register(t *testing.T, email string) {
	t.Helper()
	_, err := e.svc.Register(context.Background(), RegisterInput{
		Name:     "Alice",
		Email:    email,
		Password: "Passw0rd!",
		Phone:    "9812345678",
	})
	require.NoError(t, err)
	e.svc.Wait()
}

// storedCode returns the outstanding one-time code of the account.
func (e *testEnv) storedCode(t *testing.T, email string) string {
	t.Helper()
	user, err := e.store.Users.ByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, user.OTPCode)
	return *user.OTPCode
}
