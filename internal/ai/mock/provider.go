package mock

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/DukeRupert/vouch/internal/ai"
)

// negativeMarkers flag feedback as negative in development.
var negativeMarkers = []string{"bad", "terrible", "awful", "worst", "hate", "disappoint", "refund"}

// Provider is a mock sentiment classifier for testing and development
type Provider struct {
	logger *slog.Logger

	mu sync.Mutex

	// Configurable responses for testing. When Verdict is nil the verdict is
	// derived from negativeMarkers.
	Verdict *bool
	Error   error

	// Call tracking for testing
	Calls []string
}

var _ ai.SentimentClassifier = (*Provider)(nil)

// New creates a new mock AI provider
func New(logger *slog.Logger) *Provider {
	return &Provider{
		logger: logger,
	}
}

// ClassifySentiment returns the configured verdict or a keyword-based guess
func (p *Provider) ClassifySentiment(ctx context.Context, text string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Calls = append(p.Calls, text)

	if p.Error != nil {
		return false, p.Error
	}
	if p.Verdict != nil {
		return *p.Verdict, nil
	}

	lower := strings.ToLower(text)
	for _, marker := range negativeMarkers {
		if strings.Contains(lower, marker) {
			p.logger.Debug("mock sentiment: negative", "marker", marker)
			return false, nil
		}
	}
	return true, nil
}

// CallCount returns the number of classifications performed
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// Reset clears call tracking and custom responses for testing
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = nil
	p.Verdict = nil
	p.Error = nil
}
