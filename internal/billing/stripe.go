package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/subscription"
	"github.com/stripe/stripe-go/v79/webhook"
)

// stripeProvider is the Stripe implementation of Provider.
type stripeProvider struct {
	webhookSecret string
}

// NewStripeProvider creates a Stripe-backed Provider.
//
// The secretKey is used to authenticate Stripe API calls.
// The webhookSecret is used to verify incoming webhook signatures.
func NewStripeProvider(secretKey, webhookSecret string) Provider {
	stripe.Key = secretKey
	return &stripeProvider{webhookSecret: webhookSecret}
}

func (s *stripeProvider) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := customer.List(params)
	for iter.Next() {
		c := iter.Customer()
		return &Customer{ID: c.ID, Email: c.Email}, nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("stripe list customers: %w", err)
	}
	return nil, ErrNotFound
}

func (s *stripeProvider) CreateCustomer(ctx context.Context, email, name string) (*Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	c, err := customer.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create customer: %w", err)
	}
	return &Customer{ID: c.ID, Email: c.Email}, nil
}

func (s *stripeProvider) ListSubscriptions(ctx context.Context, customerID, status string, limit int64) ([]Subscription, error) {
	params := &stripe.SubscriptionListParams{Customer: stripe.String(customerID)}
	if status != "" {
		params.Status = stripe.String(status)
	}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)

	var out []Subscription
	iter := subscription.List(params)
	for iter.Next() && int64(len(out)) < limit {
		out = append(out, *fromStripeSubscription(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("stripe list subscriptions: %w", err)
	}
	return out, nil
}

func (s *stripeProvider) CreateSubscription(ctx context.Context, p CreateSubscriptionParams) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(p.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(p.PriceID)},
		},
	}
	if !p.StartAt.IsZero() {
		params.BillingCycleAnchor = stripe.Int64(p.StartAt.Unix())
		params.ProrationBehavior = stripe.String("none")
	}
	params.Context = ctx
	sub, err := subscription.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create subscription: %w", err)
	}
	return fromStripeSubscription(sub), nil
}

func (s *stripeProvider) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		if isResourceMissing(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stripe get subscription: %w", err)
	}
	return fromStripeSubscription(sub), nil
}

func (s *stripeProvider) ScheduleCancellation(ctx context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx
	sub, err := subscription.Update(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe cancel subscription: %w", err)
	}
	return fromStripeSubscription(sub), nil
}

func (s *stripeProvider) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(p.CustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	params.Context = ctx
	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (s *stripeProvider) ParseWebhook(payload []byte, signature string) (*Event, error) {
	return parseWebhook(payload, signature, s.webhookSecret)
}

// parseWebhook verifies and decodes a Stripe event. Subscription events carry
// their decoded subscription.
func parseWebhook(payload []byte, signature, secret string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: event.ID, Type: string(event.Type)}
	if strings.HasPrefix(out.Type, "customer.subscription.") && event.Data != nil {
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription event: %w", err)
		}
		out.Subscription = fromStripeSubscription(&sub)
	}
	return out, nil
}

func fromStripeSubscription(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:                sub.ID,
		Status:            domain.SubscriptionStatus(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.CurrentPeriodEnd > 0 {
		out.CurrentPeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		out.PriceID = sub.Items.Data[0].Price.ID
	}
	return out
}

func isResourceMissing(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing
}
