package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/DukeRupert/vouch/internal/auth"
	"github.com/DukeRupert/vouch/internal/service"
)

// maxWebhookBody bounds webhook payloads (64KB).
const maxWebhookBody = 65536

// BillingHandler serves plan management and the Stripe webhook.
type BillingHandler struct {
	billing service.BillingService
	logger  *slog.Logger
}

func NewBillingHandler(billing service.BillingService, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		billing: billing,
		logger:  logger,
	}
}

// RegisterRoutes registers billing routes on the provided mux.
//
// Routes:
//   - GET  /api/billing/plan      -> CurrentPlan (auth)
//   - POST /api/billing/cancel    -> Cancel (auth)
//   - POST /api/billing/checkout  -> Checkout (auth)
//   - POST /webhooks/stripe       -> Webhook
//
// The webhook is public; it authenticates by signature.
func (h *BillingHandler) RegisterRoutes(mux *http.ServeMux, requireAccount func(http.Handler) http.Handler) {
	mux.Handle("GET /api/billing/plan", requireAccount(http.HandlerFunc(h.CurrentPlan)))
	mux.Handle("POST /api/billing/cancel", requireAccount(http.HandlerFunc(h.Cancel)))
	mux.Handle("POST /api/billing/checkout", requireAccount(http.HandlerFunc(h.Checkout)))
	mux.HandleFunc("POST /webhooks/stripe", h.Webhook)
}

func (h *BillingHandler) CurrentPlan(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	ent, err := h.billing.CurrentPlan(r.Context(), accountID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newEntitlementView(ent))
}

type cancellationResponse struct {
	OldSubscriptionID string `json:"old_subscription_id"`
	NewSubscriptionID string `json:"new_subscription_id"`
	Status            string `json:"status"`
}

// Cancel schedules the premium subscription to end and the free plan to start.
func (h *BillingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	result, err := h.billing.CancelAndSwitchToFree(r.Context(), accountID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, cancellationResponse{
		OldSubscriptionID: result.OldSubscriptionID,
		NewSubscriptionID: result.NewSubscriptionID,
		Status:            result.Status,
	})
}

type checkoutResponse struct {
	URL string `json:"url"`
}

func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromRequest(r)
	if !ok {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	url, err := h.billing.CreateCheckoutSession(r.Context(), accountID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{URL: url})
}

// Webhook applies a Stripe event. A non-2xx response makes Stripe redeliver,
// so unknown accounts surface as 404 rather than being acknowledged.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		BadRequestResponse(w, r, h.logger, "Failed to read body")
		return
	}

	if err := h.billing.ApplyWebhookEvent(r.Context(), body, r.Header.Get("Stripe-Signature")); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
