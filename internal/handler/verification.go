package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/service"
)

// VerificationHandler exposes the verification request engine.
type VerificationHandler struct {
	verification service.VerificationService
	logger       *slog.Logger
}

func NewVerificationHandler(verification service.VerificationService, logger *slog.Logger) *VerificationHandler {
	return &VerificationHandler{
		verification: verification,
		logger:       logger,
	}
}

// RegisterRoutes registers verification routes. All are public.
//
// Routes:
//   - POST /api/verification/signup   -> IssueForSignup
//   - POST /api/verification/issue    -> Issue
//   - POST /api/verification/validate -> Validate
func (h *VerificationHandler) RegisterRoutes(mux *http.ServeMux, limits Limits) {
	mux.Handle("POST /api/verification/signup", limit(limits.Verification, h.IssueForSignup))
	mux.Handle("POST /api/verification/issue", limit(limits.Verification, h.Issue))
	mux.Handle("POST /api/verification/validate", limit(limits.Verification, h.Validate))
}

func (h *VerificationHandler) IssueForSignup(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	vr, err := h.verification.IssueForSignup(r.Context(), req.Email)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusAccepted, newVerificationView(vr))
}

type issueRequest struct {
	Identifier string `json:"identifier"`
	Type       string `json:"type"`
}

// Issue sends a fresh code. The caller never chooses the code or its lifetime.
func (h *VerificationHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	vr, err := h.verification.Issue(r.Context(), domain.IssueVerificationParams{
		Identifier: req.Identifier,
		Type:       domain.VerificationType(req.Type),
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusAccepted, newVerificationView(vr))
}

type validateRequest struct {
	Identifier string `json:"identifier"`
	Token      string `json:"token"`
	Type       string `json:"type"`
}

type grantResponse struct {
	Grant     string    `json:"grant"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *VerificationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	grant, err := h.verification.Validate(r.Context(), req.Identifier, req.Token, domain.VerificationType(req.Type))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, grantResponse{Grant: grant.Token, ExpiresAt: grant.ExpiresAt})
}
