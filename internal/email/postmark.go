package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DukeRupert/vouch/internal/metrics"
	"github.com/mrz1836/postmark"
)

// ErrInvalidConfig is returned when a sender is constructed without the
// settings it needs.
var ErrInvalidConfig = errors.New("invalid email configuration")

type postmarkAPI interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// PostmarkSender sends email through Postmark's transactional API.
type PostmarkSender struct {
	api    postmarkAPI
	config PostmarkConfig
	logger *slog.Logger
}

// NewPostmarkSender creates a Postmark-backed Sender.
func NewPostmarkSender(config PostmarkConfig, logger *slog.Logger) (*PostmarkSender, error) {
	if config.ServerToken == "" {
		return nil, fmt.Errorf("%w: postmark server token is required", ErrInvalidConfig)
	}
	if config.From == "" {
		config.From = DefaultFromEmail
	}
	if config.FromName == "" {
		config.FromName = DefaultFromName
	}
	if config.Tag == "" {
		config.Tag = "transactional"
	}

	return &PostmarkSender{
		api:    postmark.NewClient(config.ServerToken, config.AccountToken),
		config: config,
		logger: logger,
	}, nil
}

// Send delivers msg. Opens are not tracked.
func (s *PostmarkSender) Send(ctx context.Context, msg Message) error {
	msg, err := withHTML(msg)
	if err != nil {
		return fmt.Errorf("render html body: %w", err)
	}

	resp, err := s.api.SendEmail(ctx, postmark.Email{
		From:     fromHeader(s.config.FromName, s.config.From),
		ReplyTo:  s.config.ReplyTo,
		To:       msg.To,
		Subject:  msg.Subject,
		Tag:      s.config.Tag,
		TextBody: msg.TextBody,
		HTMLBody: msg.HTMLBody,
	})
	if err == nil && resp.ErrorCode > 0 {
		err = fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message)
	}
	metrics.EmailSent("postmark", err)
	if err != nil {
		s.logger.Error("failed to send email",
			"to", msg.To,
			"subject", msg.Subject,
			"error", err,
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		"to", msg.To,
		"subject", msg.Subject,
		"message_id", resp.MessageID,
	)

	return nil
}

var _ Sender = (*PostmarkSender)(nil)
