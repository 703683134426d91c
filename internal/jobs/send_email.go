// Package jobs contains the background job handlers registered with the worker.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DukeRupert/vouch/internal/email"
	"github.com/DukeRupert/vouch/internal/worker"
)

// SendEmailHandler delivers queued email through the configured Sender.
type SendEmailHandler struct {
	sender email.Sender
	logger *slog.Logger
}

// NewSendEmailHandler creates a new handler for send_email jobs.
func NewSendEmailHandler(sender email.Sender, logger *slog.Logger) *SendEmailHandler {
	return &SendEmailHandler{
		sender: sender,
		logger: logger,
	}
}

// Type returns the job type identifier.
func (h *SendEmailHandler) Type() string {
	return worker.JobTypeSendEmail
}

// Handle sends one message. Transport failures are retried by the worker;
// a payload that can never be delivered fails permanently.
func (h *SendEmailHandler) Handle(ctx context.Context, payload []byte) error {
	var p worker.SendEmailPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.NewPermanentError(fmt.Errorf("invalid payload: %w", err))
	}
	if strings.TrimSpace(p.To) == "" {
		return worker.Permanentf("invalid payload: missing recipient")
	}

	h.logger.Debug("Sending email", "to", p.To, "subject", p.Subject)

	if err := h.sender.Send(ctx, email.Message{
		To:       p.To,
		Subject:  p.Subject,
		TextBody: p.TextBody,
		HTMLBody: p.HTMLBody,
	}); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

var _ worker.JobHandler = (*SendEmailHandler)(nil)
