// Package billing provides the billing provider integration used for
// entitlement and subscription synchronization.
package billing

import (
	"context"
	"errors"
	"time"

	"github.com/DukeRupert/vouch/internal/domain"
)

var (
	// ErrNotFound is returned when the provider has no matching object.
	ErrNotFound = errors.New("billing: not found")

	// ErrInvalidSignature is returned when a webhook payload fails verification.
	ErrInvalidSignature = errors.New("billing: invalid webhook signature")
)

// EventSubscriptionUpdated is the only webhook event type acted upon.
const EventSubscriptionUpdated = "customer.subscription.updated"

// Customer is a provider customer.
type Customer struct {
	ID    string
	Email string
}

// Subscription is the provider's authoritative subscription state.
type Subscription struct {
	ID                string
	CustomerID        string
	PriceID           string
	Status            domain.SubscriptionStatus
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
}

// Event is a verified webhook event. Subscription is set only for
// subscription events.
type Event struct {
	ID           string
	Type         string
	Subscription *Subscription
}

// CreateSubscriptionParams describes a new subscription. A zero StartAt starts
// it immediately; otherwise billing is anchored at StartAt with no proration.
type CreateSubscriptionParams struct {
	CustomerID string
	PriceID    string
	StartAt    time.Time
}

// CheckoutParams describes a hosted checkout session for upgrading.
type CheckoutParams struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// PriceConfig holds the provider price ids for each tier.
type PriceConfig struct {
	FreePriceID    string
	PremiumPriceID string
}

// Provider defines the billing operations the services depend on.
type Provider interface {
	// FindCustomerByEmail returns the first customer with email, or ErrNotFound.
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)

	// CreateCustomer creates a customer.
	CreateCustomer(ctx context.Context, email, name string) (*Customer, error)

	// ListSubscriptions lists a customer's subscriptions, optionally filtered by status.
	ListSubscriptions(ctx context.Context, customerID, status string, limit int64) ([]Subscription, error)

	// CreateSubscription creates a subscription.
	CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*Subscription, error)

	// GetSubscription retrieves a subscription, or ErrNotFound.
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)

	// ScheduleCancellation sets a subscription to cancel at period end.
	ScheduleCancellation(ctx context.Context, subscriptionID string) (*Subscription, error)

	// CreateCheckoutSession returns the hosted checkout URL.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error)

	// ParseWebhook verifies the signature and decodes the event.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
