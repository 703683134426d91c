package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/vouch/internal/auth"
	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/service"
)

// Limits wraps the unauthenticated endpoints that are worth throttling.
// A nil field leaves the route unthrottled.
type Limits struct {
	Login        func(http.Handler) http.Handler
	Register     func(http.Handler) http.Handler
	Verification func(http.Handler) http.Handler
}

func limit(mw func(http.Handler) http.Handler, h http.HandlerFunc) http.Handler {
	if mw == nil {
		return h
	}
	return mw(h)
}

// AccountHandler serves signup, login, email verification, password recovery
// and the authenticated account's profile.
type AccountHandler struct {
	accounts     service.AccountService
	verification service.VerificationService
	logger       *slog.Logger
}

func NewAccountHandler(accounts service.AccountService, verification service.VerificationService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts:     accounts,
		verification: verification,
		logger:       logger,
	}
}

// RegisterRoutes registers account routes on the provided mux.
//
// Routes:
//   - POST  /api/auth/register             -> Register
//   - POST  /api/auth/login                -> Login
//   - POST  /api/auth/verify-email         -> VerifyEmail
//   - POST  /api/auth/resend-verification  -> ResendVerification
//   - POST  /api/auth/recover-password     -> RecoverPassword
//   - GET   /api/account                   -> Me (auth)
//   - PATCH /api/account                   -> UpdateProfile (auth)
//   - GET   /api/account/quota             -> Quota (auth)
func (h *AccountHandler) RegisterRoutes(mux *http.ServeMux, requireAccount func(http.Handler) http.Handler, limits Limits) {
	mux.Handle("POST /api/auth/register", limit(limits.Register, h.Register))
	mux.Handle("POST /api/auth/login", limit(limits.Login, h.Login))
	mux.Handle("POST /api/auth/verify-email", limit(limits.Verification, h.VerifyEmail))
	mux.Handle("POST /api/auth/resend-verification", limit(limits.Verification, h.ResendVerification))
	mux.Handle("POST /api/auth/recover-password", limit(limits.Verification, h.RecoverPassword))

	mux.Handle("GET /api/account", requireAccount(http.HandlerFunc(h.Me)))
	mux.Handle("PATCH /api/account", requireAccount(http.HandlerFunc(h.UpdateProfile)))
	mux.Handle("GET /api/account/quota", requireAccount(http.HandlerFunc(h.Quota)))
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	account, err := h.accounts.Register(r.Context(), domain.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAccountView(account))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	Account     accountView `json:"account"`
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   result.ExpiresAt,
		Account:     newAccountView(result.Account),
	})
}

type codeRequest struct {
	Identifier string `json:"identifier"`
	Token      string `json:"token"`
}

// VerifyEmail consumes an EMAIL_VERIFICATION code.
func (h *AccountHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	account, err := h.verification.ConsumeEmailVerification(r.Context(), req.Identifier, req.Token)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountView(account))
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *AccountHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	vr, err := h.accounts.ResendEmailVerification(r.Context(), req.Email)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusAccepted, newVerificationView(vr))
}

type recoverPasswordRequest struct {
	Grant    string `json:"grant"`
	Password string `json:"password"`
}

func (h *AccountHandler) RecoverPassword(w http.ResponseWriter, r *http.Request) {
	var req recoverPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.accounts.RecoverPassword(r.Context(), req.Grant, req.Password); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	account, err := h.accounts.GetByID(r.Context(), accountID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountView(account))
}

type profileRequest struct {
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Image       string `json:"image"`
}

// UpdateProfile edits display fields. The request shape has no billing fields.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	account, err := h.accounts.UpdateProfile(r.Context(), domain.ProfileUpdateParams{
		AccountID:   accountID,
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Image:       req.Image,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountView(account))
}

func (h *AccountHandler) Quota(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	usage, err := h.accounts.GetQuotaUsage(r.Context(), accountID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, usage)
}
