// Package ai defines the sentiment classification capability used to
// moderate testimonials, with an Anthropic-backed and a mock implementation.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SentimentClassifier decides whether a piece of customer feedback is positive.
type SentimentClassifier interface {
	// ClassifySentiment returns true for positive feedback.
	ClassifySentiment(ctx context.Context, text string) (bool, error)
}

// ProviderConfig contains common configuration for AI providers
type ProviderConfig struct {
	MaxRetries     int           // Maximum retry attempts for transient errors
	RetryBaseDelay time.Duration // Base delay for exponential backoff
	RequestTimeout time.Duration // Timeout for individual requests
}

// Error codes for AI provider operations
var (
	// EAIRateLimit indicates the API rate limit has been exceeded
	EAIRateLimit = errors.New("ai provider rate limit exceeded")

	// EAIInvalidRequest indicates the provider rejected the request
	EAIInvalidRequest = errors.New("ai provider rejected the request")

	// EAIUnparseable indicates the model answered with something other than a verdict
	EAIUnparseable = errors.New("ai response could not be parsed")

	// EAITimeout indicates the request timed out
	EAITimeout = errors.New("ai request timed out")

	// EAIUnavailable indicates the AI service is temporarily unavailable
	EAIUnavailable = errors.New("ai service temporarily unavailable")

	// EAIUnauthorized indicates invalid API credentials
	EAIUnauthorized = errors.New("ai provider authentication failed")
)

// IsRetryable returns true if the error is a transient error that can be retried
func IsRetryable(err error) bool {
	return errors.Is(err, EAIRateLimit) ||
		errors.Is(err, EAITimeout) ||
		errors.Is(err, EAIUnavailable)
}

// WrapError wraps an error with context about the AI operation
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("ai %s: %w", operation, err)
}
