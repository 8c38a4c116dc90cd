package handler

import (
	"net/http"

	"github.com/internnepal/jobboard/internal/ctxkeys"
	"github.com/internnepal/jobboard/internal/model"
	"github.com/internnepal/jobboard/internal/service"
)

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{
		authService: authService,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

// codeRequest accepts the code under "otp" (what the frontend sends) or "code".
type codeRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
	Code  string `json:"code"`
}

func (c codeRequest) code() string {
	if c.OTP != "" {
		return c.OTP
	}
	return c.Code
}

type resetPasswordRequest struct {
	codeRequest
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user.PublicWithVerification())
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: result.Token, User: result.User})
}

func (h *authHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.authService.VerifyOTP(r.Context(), req.Email, req.code())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeEmpty(w)
}

func (h *authHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.authService.ResendOTP(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeEmpty(w)
}

func (h *authHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.authService.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeEmpty(w)
}

func (h *authHandler) VerifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.authService.VerifyResetOTP(r.Context(), req.Email, req.code())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeEmpty(w)
}

func (h *authHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.authService.ResetPassword(r.Context(), service.ResetPasswordInput{
		Email:       req.Email,
		Code:        req.code(),
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeEmpty(w)
}

// Me returns the account behind the bearer token. Routed behind RequireAuth.
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	writeJSON(w, http.StatusOK, user.Public())
}
