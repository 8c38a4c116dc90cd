package routes

import (
	"net/http"

	"github.com/internnepal/jobboard/internal/app"
	"github.com/internnepal/jobboard/internal/handler"
	"github.com/internnepal/jobboard/internal/metrics"
	"github.com/internnepal/jobboard/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	health := handler.NewHealthHandler(app.DB)
	home := handler.NewHomeHandler(app.Cfg.AppName)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /{$}", home.Index)
	mux.HandleFunc("GET /healthz", health.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	// Auth - Authentication flow (rate limited)
	rateLimiter := middleware.RateLimit(middleware.NewRateLimiter(app.Cfg.RateLimitAuthBurst, app.Cfg.RateLimitAuthInterval))

	mux.HandleFunc("POST /api/auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /api/auth/verify-otp", rateLimiter(auth.VerifyOTP))
	mux.HandleFunc("POST /api/auth/resend-otp", rateLimiter(auth.ResendOTP))
	mux.HandleFunc("POST /api/auth/request-password-reset", rateLimiter(auth.RequestPasswordReset))
	mux.HandleFunc("POST /api/auth/verify-reset-otp", rateLimiter(auth.VerifyResetOTP))
	mux.HandleFunc("POST /api/auth/reset-password", rateLimiter(auth.ResetPassword))

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(auth.Me))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/{path...}", home.NotFound)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.SecurityHeaders,
		middleware.CORS(app.Cfg.FrontendURL),
		middleware.MaxBodyBytes(app.Cfg.MaxBodyBytes),
		middleware.AuthMiddleware(app.AuthService),
		metrics.Instrument, // innermost, so it sees the matched route pattern
	)

	return handler
}
