// Package email delivers transactional mail for Vouch. Services never send
// directly: they enqueue a send_email job through Queue and the worker hands
// the message to a Sender.
package email

import (
	"bytes"
	"context"
	"html/template"
	"strings"
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message represents a single email message.
type Message struct {
	To       string // Recipient email address
	Subject  string // Email subject line
	TextBody string // Plain text content
	HTMLBody string // Optional HTML content; rendered from TextBody when empty
}

// =============================================================================
// Configuration Types
// =============================================================================

// SMTPConfig holds SMTP server configuration.
type SMTPConfig struct {
	Host     string // SMTP server hostname (e.g., "localhost" for Mailhog)
	Port     int    // SMTP server port (e.g., 1025 for Mailhog)
	Username string // Empty for unauthenticated relays
	Password string
	From     string
	FromName string
}

// PostmarkConfig holds Postmark API credentials.
type PostmarkConfig struct {
	ServerToken  string
	AccountToken string
	From         string
	FromName     string
	ReplyTo      string
	Tag          string
}

const (
	// DefaultFromEmail is the default sender email for transactional emails.
	DefaultFromEmail = "noreply@vouch.app"

	// DefaultFromName is the default sender display name.
	DefaultFromName = "Vouch"
)

func fromHeader(name, addr string) string {
	if name == "" {
		return addr
	}
	return name + " <" + addr + ">"
}

var htmlLayout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; line-height: 1.5;">
{{range .}}<p>{{.}}</p>
{{end}}</body>
</html>
`))

// renderHTML wraps a plain text body in the HTML layout, one paragraph per
// blank-line separated block.
func renderHTML(text string) (string, error) {
	var paragraphs []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var buf bytes.Buffer
	if err := htmlLayout.Execute(&buf, paragraphs); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// withHTML fills HTMLBody from TextBody when it is empty.
func withHTML(msg Message) (Message, error) {
	if msg.HTMLBody != "" {
		return msg, nil
	}
	html, err := renderHTML(msg.TextBody)
	if err != nil {
		return msg, err
	}
	msg.HTMLBody = html
	return msg, nil
}
