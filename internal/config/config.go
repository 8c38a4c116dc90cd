package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/internnepal/jobboard/internal/validation"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	PasswordResetMethodCode = "code"
	PasswordResetMethodLink = "link"

	NotifyPolicyBestEffort = "best_effort"
	NotifyPolicyStrict     = "strict"
)

type Config struct {
	// Application
	AppName     string
	AppEnv      string
	AppURL      string // base URL of the frontend, used in reset links
	Port        string
	FrontendURL string // allowed CORS origin

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret                string
	JWTExpiry                time.Duration
	OTPLength                int
	OTPExpiry                time.Duration
	TokenPasswordResetExpiry time.Duration
	PasswordResetMethod      string // "code" or "link"
	BcryptCost               int
	RequireVerifiedLogin     bool
	ResetConcealUnknownEmail bool

	// Password policy
	PasswordMinLength      int
	PasswordMaxLength      int
	PasswordRequireUpper   bool
	PasswordRequireLower   bool
	PasswordRequireDigit   bool
	PasswordRequireSpecial bool

	// Email
	EmailFrom    string
	ResendAPIKey string
	NotifyPolicy string // "best_effort" or "strict"

	// HTTP hardening
	RateLimitAuthBurst    int
	RateLimitAuthInterval time.Duration
	MaxBodyBytes          int64

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:     envString("APP_NAME", "InternNepal"),
		AppEnv:      envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:      envRequired("APP_URL"),
		Port:        envString("PORT", "5050"),
		FrontendURL: envString("FRONTEND_URL", "http://localhost:3000"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/internnepal.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		// Security
		JWTSecret:                envRequired("JWT_SECRET"),
		JWTExpiry:                envDuration("JWT_EXPIRY", 168*time.Hour),                // 7 days
		OTPLength:                envInt("OTP_LENGTH", 6),                                  // digits
		OTPExpiry:                envDuration("OTP_EXPIRY", 10*time.Minute),                // 10 minutes
		TokenPasswordResetExpiry: envDuration("TOKEN_PASSWORD_RESET_EXPIRY", 1*time.Hour), // 1 hour
		PasswordResetMethod:      envString("PASSWORD_RESET_METHOD", PasswordResetMethodCode),
		BcryptCost:               envInt("BCRYPT_COST", bcrypt.DefaultCost),
		RequireVerifiedLogin:     envBool("REQUIRE_VERIFIED_LOGIN", false),
		ResetConcealUnknownEmail: envBool("RESET_CONCEAL_UNKNOWN_EMAIL", false),

		// Password policy
		PasswordMinLength:      envInt("PASSWORD_MIN_LENGTH", 8),
		PasswordMaxLength:      envInt("PASSWORD_MAX_LENGTH", 72),
		PasswordRequireUpper:   envBool("PASSWORD_REQUIRE_UPPER", true),
		PasswordRequireLower:   envBool("PASSWORD_REQUIRE_LOWER", true),
		PasswordRequireDigit:   envBool("PASSWORD_REQUIRE_DIGIT", true),
		PasswordRequireSpecial: envBool("PASSWORD_REQUIRE_SPECIAL", true),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@internnepal.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),
		NotifyPolicy: envString("NOTIFY_POLICY", NotifyPolicyBestEffort),

		// HTTP hardening
		RateLimitAuthBurst:    envInt("RATE_LIMIT_AUTH_BURST", 5),
		RateLimitAuthInterval: envDuration("RATE_LIMIT_AUTH_INTERVAL", 3*time.Minute),
		MaxBodyBytes:          int64(envInt("MAX_BODY_BYTES", 1<<20)),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	cfg.normalize()

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// normalize falls back to defaults for enum-like options with unknown values.
func (c *Config) normalize() {
	if c.PasswordResetMethod != PasswordResetMethodCode && c.PasswordResetMethod != PasswordResetMethodLink {
		slog.Warn("config invalid password reset method, using default", "value", c.PasswordResetMethod, "default", PasswordResetMethodCode)
		c.PasswordResetMethod = PasswordResetMethodCode
	}
	if c.NotifyPolicy != NotifyPolicyBestEffort && c.NotifyPolicy != NotifyPolicyStrict {
		slog.Warn("config invalid notify policy, using default", "value", c.NotifyPolicy, "default", NotifyPolicyBestEffort)
		c.NotifyPolicy = NotifyPolicyBestEffort
	}
	if c.OTPLength < 4 || c.OTPLength > 10 {
		slog.Warn("config invalid otp length, using default", "value", c.OTPLength, "default", 6)
		c.OTPLength = 6
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		slog.Warn("config invalid bcrypt cost, using default", "value", c.BcryptCost, "default", bcrypt.DefaultCost)
		c.BcryptCost = bcrypt.DefaultCost
	}
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows email to use log mode for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
	if len(cfg.JWTSecret) < 32 {
		slog.Error("production deployment requires JWT_SECRET of at least 32 bytes")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) PasswordPolicy() validation.PasswordPolicy {
	return validation.PasswordPolicy{
		MinLength:      c.PasswordMinLength,
		MaxLength:      c.PasswordMaxLength,
		RequireUpper:   c.PasswordRequireUpper,
		RequireLower:   c.PasswordRequireLower,
		RequireDigit:   c.PasswordRequireDigit,
		RequireSpecial: c.PasswordRequireSpecial,
	}
}
