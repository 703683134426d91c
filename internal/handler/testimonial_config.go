package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/vouch/internal/auth"
	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/service"
	"github.com/google/uuid"
)

// TestimonialConfigHandler manages the account's testimonial configs.
type TestimonialConfigHandler struct {
	configs service.TestimonialConfigService
	logger  *slog.Logger
}

func NewTestimonialConfigHandler(configs service.TestimonialConfigService, logger *slog.Logger) *TestimonialConfigHandler {
	return &TestimonialConfigHandler{
		configs: configs,
		logger:  logger,
	}
}

// RegisterRoutes registers config routes. All require an account.
func (h *TestimonialConfigHandler) RegisterRoutes(mux *http.ServeMux, requireAccount func(http.Handler) http.Handler) {
	mux.Handle("POST /api/testimonial-configs", requireAccount(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/testimonial-configs", requireAccount(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/testimonial-configs/{id}", requireAccount(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/testimonial-configs/{id}", requireAccount(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/testimonial-configs/{id}", requireAccount(http.HandlerFunc(h.Delete)))
}

type configRequest struct {
	Name             string `json:"name"`
	Format           string `json:"format"`
	TitleCharLimit   int    `json:"title_char_limit"`
	MessageCharLimit int    `json:"message_char_limit"`
	ExpirationDays   int    `json:"expiration_days"`
}

func (req configRequest) params(accountID uuid.UUID) domain.TestimonialConfigParams {
	return domain.TestimonialConfigParams{
		AccountID:        accountID,
		Name:             req.Name,
		Format:           domain.TestimonialFormat(req.Format),
		TitleCharLimit:   req.TitleCharLimit,
		MessageCharLimit: req.MessageCharLimit,
		ExpirationDays:   req.ExpirationDays,
	}
}

func (h *TestimonialConfigHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req configRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	cfg, err := h.configs.Create(r.Context(), req.params(accountID))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newConfigView(cfg))
}

func (h *TestimonialConfigHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	page, err := h.configs.List(r.Context(), accountID, pageParams(r))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toList(page, newConfigView))
}

func (h *TestimonialConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	cfg, err := h.configs.Get(r.Context(), accountID, id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newConfigView(cfg))
}

func (h *TestimonialConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req configRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	cfg, err := h.configs.Update(r.Context(), id, req.params(accountID))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newConfigView(cfg))
}

func (h *TestimonialConfigHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.configs.Delete(r.Context(), accountID, id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
