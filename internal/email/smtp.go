package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/DukeRupert/vouch/internal/metrics"
)

const mimeBoundary = "===============VOUCH_BOUNDARY==============="

// SMTPSender sends email via SMTP.
//
// This implementation works with:
// - Mailhog (development): No authentication required
// - Any standard SMTP relay with PLAIN auth
type SMTPSender struct {
	config SMTPConfig
	logger *slog.Logger

	// sendMail defaults to smtp.SendMail.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates an SMTP-backed Sender.
func NewSMTPSender(config SMTPConfig, logger *slog.Logger) (*SMTPSender, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if config.Port == 0 {
		config.Port = 25
	}
	if config.From == "" {
		config.From = DefaultFromEmail
	}
	if config.FromName == "" {
		config.FromName = DefaultFromName
	}

	return &SMTPSender{
		config:   config,
		logger:   logger,
		sendMail: smtp.SendMail,
	}, nil
}

// Send delivers msg. net/smtp has no context support, so ctx is only checked
// before dialing.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := withHTML(msg)
	if err != nil {
		return fmt.Errorf("render html body: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	err = s.sendMail(addr, auth, s.config.From, []string{msg.To}, s.buildMessage(msg))
	metrics.EmailSent("smtp", err)
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
	)

	return nil
}

// buildMessage writes a multipart/alternative message with text and HTML parts.
func (s *SMTPSender) buildMessage(msg Message) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", fromHeader(s.config.FromName, s.config.From))
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", mimeBoundary)
	buf.WriteString("\r\n")

	writePart := func(contentType, body string) {
		fmt.Fprintf(&buf, "--%s\r\n", mimeBoundary)
		fmt.Fprintf(&buf, "Content-Type: %s; charset=utf-8\r\n", contentType)
		buf.WriteString("\r\n")
		buf.WriteString(body)
		buf.WriteString("\r\n")
	}
	writePart("text/plain", msg.TextBody)
	writePart("text/html", msg.HTMLBody)

	fmt.Fprintf(&buf, "--%s--\r\n", mimeBoundary)

	return buf.Bytes()
}

var _ Sender = (*SMTPSender)(nil)
