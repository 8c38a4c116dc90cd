package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/internnepal/jobboard/internal/config"
	"github.com/internnepal/jobboard/internal/db"
	"github.com/internnepal/jobboard/internal/metrics"
	"github.com/internnepal/jobboard/internal/repository"
	"github.com/internnepal/jobboard/internal/service"
	"github.com/jmoiron/sqlx"
)

const (
	tokenCleanupInterval = time.Hour
	tokenRetention       = 24 * time.Hour
)

type App struct {
	Cfg         *config.Config
	DB          *sqlx.DB
	Store       *repository.Store
	Credentials *service.CredentialService
	AuthService *service.AuthService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	metrics.Init()

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppName,
		cfg.IsDevelopment(),
	)

	return NewWithDB(cfg, database, emailService), nil
}

// NewWithDB wires the services around an already migrated database.
func NewWithDB(cfg *config.Config, database *sqlx.DB, notifier service.Notifier) *App {
	store := repository.NewStore(database)
	credentials := service.NewCredentialService(cfg.JWTSecret, cfg.JWTExpiry, cfg.BcryptCost)

	authService := service.NewAuthService(store, credentials, notifier, service.AuthOptions{
		AppName:                  cfg.AppName,
		AppURL:                   cfg.AppURL,
		OTPLength:                cfg.OTPLength,
		OTPExpiry:                cfg.OTPExpiry,
		ResetTokenExpiry:         cfg.TokenPasswordResetExpiry,
		ResetMethod:              service.ResetMethod(cfg.PasswordResetMethod),
		StrictNotify:             cfg.NotifyPolicy == config.NotifyPolicyStrict,
		RequireVerifiedLogin:     cfg.RequireVerifiedLogin,
		ConcealUnknownResetEmail: cfg.ResetConcealUnknownEmail,
		PasswordRule:             cfg.PasswordPolicy().Validate,
	})

	return &App{
		Cfg:         cfg,
		DB:          database,
		Store:       store,
		Credentials: credentials,
		AuthService: authService,
	}
}

// RunMaintenance prunes spent reset tokens until ctx is cancelled.
func (a *App) RunMaintenance(ctx context.Context) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.AuthService.CleanupResetTokens(ctx, tokenRetention)
			if err != nil {
				slog.Error("failed to clean up reset tokens", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("cleaned up reset tokens", "count", n)
			}
		}
	}
}

// Close waits for pending emails, then closes the database.
func (a *App) Close() error {
	a.AuthService.Wait()
	return db.Close(a.DB)
}
