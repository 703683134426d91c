package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/vouch/internal/auth"
	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/service"
	"github.com/google/uuid"
)

// LandingPageHandler manages the account's landing pages.
type LandingPageHandler struct {
	pages  service.LandingPageService
	logger *slog.Logger
}

func NewLandingPageHandler(pages service.LandingPageService, logger *slog.Logger) *LandingPageHandler {
	return &LandingPageHandler{
		pages:  pages,
		logger: logger,
	}
}

// RegisterRoutes registers landing page routes. All require an account.
//
// Routes:
//   - POST   /api/landing-pages         -> Create
//   - GET    /api/landing-pages         -> List
//   - GET    /api/landing-pages/{id}    -> Get
//   - DELETE /api/landing-pages/{id}    -> Delete
//   - POST   /api/landing-pages/delete  -> DeleteMany
func (h *LandingPageHandler) RegisterRoutes(mux *http.ServeMux, requireAccount func(http.Handler) http.Handler) {
	mux.Handle("POST /api/landing-pages", requireAccount(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/landing-pages", requireAccount(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/landing-pages/{id}", requireAccount(http.HandlerFunc(h.Get)))
	mux.Handle("DELETE /api/landing-pages/{id}", requireAccount(http.HandlerFunc(h.Delete)))
	mux.Handle("POST /api/landing-pages/delete", requireAccount(http.HandlerFunc(h.DeleteMany)))
}

type landingPageRequest struct {
	TestimonialConfigID uuid.UUID `json:"testimonial_config_id"`
	Name                string    `json:"name"`
	Link                string    `json:"link"`
}

func (h *LandingPageHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req landingPageRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	page, err := h.pages.Create(r.Context(), domain.CreateLandingPageParams{
		AccountID:           accountID,
		TestimonialConfigID: req.TestimonialConfigID,
		Name:                req.Name,
		Link:                req.Link,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newLandingPageView(page))
}

func (h *LandingPageHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	page, err := h.pages.List(r.Context(), accountID, pageParams(r))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toList(page, newLandingPageView))
}

func (h *LandingPageHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.pages.Get(r.Context(), accountID, id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newLandingPageView(page))
}

func (h *LandingPageHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.pages.Delete(r.Context(), accountID, id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *LandingPageHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	n, err := h.pages.DeleteMany(r.Context(), accountID, req.IDs)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, deletedResponse{Deleted: n})
}
