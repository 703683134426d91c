package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/DukeRupert/vouch/internal/billing"
	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/metrics"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// BillingService keeps the cached account billing state in line with the
// billing provider.
type BillingService interface {
	// ApplyWebhookEvent verifies and applies a provider webhook. Only
	// subscription updates change state; other event types are acknowledged.
	// Returns domain.EUNAUTHORIZED (INVALID_WEBHOOK_SIGNATURE) on a bad signature
	// and domain.ENOTFOUND when no account matches the subscription.
	ApplyWebhookEvent(ctx context.Context, payload []byte, signature string) error

	// CancelAndSwitchToFree schedules the premium subscription to end at period
	// end and queues a free subscription to start then. The cached billing
	// state is left for the resulting webhook to update.
	CancelAndSwitchToFree(ctx context.Context, accountID uuid.UUID) (*domain.CancellationResult, error)

	// CurrentPlan returns the account's entitlement.
	CurrentPlan(ctx context.Context, accountID uuid.UUID) (*domain.Entitlement, error)

	// CreateCheckoutSession returns a hosted checkout URL for upgrading to premium.
	// Returns domain.ECONFLICT (ALREADY_PREMIUM) if the account is premium.
	CreateCheckoutSession(ctx context.Context, accountID uuid.UUID) (string, error)

	// ProvisionCustomer returns the billing state for email, reusing an existing
	// customer and its first subscription, or creating a customer on the free price.
	ProvisionCustomer(ctx context.Context, email, name string) (*domain.BillingCache, error)
}

// =============================================================================
// Implementation
// =============================================================================

type billingService struct {
	accounts    AccountStore
	provider    billing.Provider
	entitlement EntitlementResolver
	prices      billing.PriceConfig
	frontendURL string
	logger      *slog.Logger
}

// NewBillingService creates a new BillingService.
func NewBillingService(
	accounts AccountStore,
	provider billing.Provider,
	entitlement EntitlementResolver,
	prices billing.PriceConfig,
	frontendURL string,
	logger *slog.Logger,
) BillingService {
	return &billingService{
		accounts:    accounts,
		provider:    provider,
		entitlement: entitlement,
		prices:      prices,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		logger:      logger,
	}
}

func (s *billingService) ApplyWebhookEvent(ctx context.Context, payload []byte, signature string) error {
	const op = "billing.apply_webhook_event"

	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			s.logger.Warn("webhook signature verification failed", "error", err)
			metrics.WebhookHandled("rejected")
			return domain.Wrap(err, domain.EUNAUTHORIZED, op, domain.ReasonInvalidWebhookSignature)
		}
		metrics.WebhookHandled("rejected")
		return domain.Wrap(err, domain.EINVALID, op, "Malformed webhook payload")
	}

	if event.Type != billing.EventSubscriptionUpdated || event.Subscription == nil {
		s.logger.Debug("ignoring webhook event", "event_id", event.ID, "type", event.Type)
		metrics.WebhookHandled("ignored")
		return nil
	}

	sub := event.Subscription
	account, err := s.accounts.FindAccountByBilling(ctx, sub.CustomerID, sub.ID)
	if err != nil {
		if isNotFound(err) {
			s.logger.Error("webhook references unknown account",
				"event_id", event.ID,
				"customer_id", sub.CustomerID,
				"subscription_id", sub.ID,
			)
			metrics.WebhookHandled("failed")
			return domain.NotFound(op, domain.ReasonAccountNotFound)
		}
		metrics.WebhookHandled("failed")
		return domain.Internal(err, op, "failed to find account by billing info")
	}

	if _, err := s.accounts.ApplyBillingSync(ctx, domain.BillingSyncParams{
		AccountID:          account.ID,
		CustomerID:         sub.CustomerID,
		SubscriptionID:     sub.ID,
		PriceID:            sub.PriceID,
		SubscriptionStatus: sub.Status,
	}); err != nil {
		metrics.WebhookHandled("failed")
		return storeErr(err, op, domain.ReasonAccountNotFound, "failed to sync billing state")
	}

	s.logger.Info("subscription synced",
		"event_id", event.ID,
		"account_id", account.ID,
		"subscription_id", sub.ID,
		"price_id", sub.PriceID,
		"status", sub.Status,
	)
	metrics.WebhookHandled("synced")

	return nil
}

func (s *billingService) CancelAndSwitchToFree(ctx context.Context, accountID uuid.UUID) (*domain.CancellationResult, error) {
	const op = "billing.cancel_and_switch_to_free"

	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonAccountNotFound, "failed to get account")
	}
	if !account.Billing.IsProvisioned() {
		return nil, domain.Conflict(op, domain.ReasonNoActiveSubscription)
	}

	subs, err := s.provider.ListSubscriptions(ctx, account.Billing.CustomerID, string(domain.SubscriptionStatusActive), 1)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list subscriptions")
	}
	if len(subs) == 0 {
		return nil, domain.Conflict(op, domain.ReasonNoActiveSubscription)
	}
	current := subs[0]

	if current.PriceID != s.prices.PremiumPriceID {
		return nil, domain.Conflict(op, domain.ReasonNotPremium)
	}
	if current.CancelAtPeriodEnd {
		return nil, domain.Conflict(op, domain.ReasonCancellationAlreadyScheduled)
	}

	if _, err := s.provider.ScheduleCancellation(ctx, current.ID); err != nil {
		return nil, domain.Internal(err, op, "failed to schedule cancellation")
	}

	next, err := s.provider.CreateSubscription(ctx, billing.CreateSubscriptionParams{
		CustomerID: account.Billing.CustomerID,
		PriceID:    s.prices.FreePriceID,
		StartAt:    current.CurrentPeriodEnd,
	})
	if err != nil {
		s.logger.Error("premium cancellation scheduled but free subscription not created",
			"account_id", accountID,
			"subscription_id", current.ID,
			"error", err,
		)
		return nil, domain.Internal(err, op, "failed to create free subscription")
	}

	s.logger.Info("switched to free at period end",
		"account_id", accountID,
		"old_subscription_id", current.ID,
		"new_subscription_id", next.ID,
		"starts_at", current.CurrentPeriodEnd,
	)

	return &domain.CancellationResult{
		OldSubscriptionID: current.ID,
		NewSubscriptionID: next.ID,
		Status:            string(next.Status),
	}, nil
}

func (s *billingService) CurrentPlan(ctx context.Context, accountID uuid.UUID) (*domain.Entitlement, error) {
	return s.entitlement.CurrentTier(ctx, accountID)
}

func (s *billingService) CreateCheckoutSession(ctx context.Context, accountID uuid.UUID) (string, error) {
	const op = "billing.create_checkout_session"

	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return "", storeErr(err, op, domain.ReasonAccountNotFound, "failed to get account")
	}
	if account.Billing.SubscriptionID == "" {
		return "", domain.NotFound(op, domain.ReasonSubscriptionNotFound)
	}

	sub, err := s.provider.GetSubscription(ctx, account.Billing.SubscriptionID)
	if errors.Is(err, billing.ErrNotFound) {
		return "", domain.NotFound(op, domain.ReasonSubscriptionNotFound)
	}
	if err != nil {
		return "", domain.Internal(err, op, "failed to retrieve subscription")
	}
	if sub.PriceID == s.prices.PremiumPriceID {
		return "", domain.Conflict(op, domain.ReasonAlreadyPremium)
	}

	url, err := s.provider.CreateCheckoutSession(ctx, billing.CheckoutParams{
		CustomerID: account.Billing.CustomerID,
		PriceID:    s.prices.PremiumPriceID,
		SuccessURL: s.frontendURL + "/dashboard?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.frontendURL + "/dashboard",
	})
	if err != nil {
		return "", domain.Internal(err, op, "failed to create checkout session")
	}

	s.logger.Info("checkout session created", "account_id", accountID)
	return url, nil
}

func (s *billingService) ProvisionCustomer(ctx context.Context, email, name string) (*domain.BillingCache, error) {
	const op = "billing.provision_customer"

	customer, err := s.provider.FindCustomerByEmail(ctx, email)
	switch {
	case err == nil:
		subs, err := s.provider.ListSubscriptions(ctx, customer.ID, "", 1)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to list subscriptions")
		}
		if len(subs) > 0 {
			s.logger.Info("reusing billing customer", "customer_id", customer.ID, "subscription_id", subs[0].ID)
			return cacheFor(customer.ID, &subs[0]), nil
		}
	case errors.Is(err, billing.ErrNotFound):
		customer, err = s.provider.CreateCustomer(ctx, email, name)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to create customer")
		}
	default:
		return nil, domain.Internal(err, op, "failed to look up customer")
	}

	sub, err := s.provider.CreateSubscription(ctx, billing.CreateSubscriptionParams{
		CustomerID: customer.ID,
		PriceID:    s.prices.FreePriceID,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create free subscription")
	}

	s.logger.Info("billing customer provisioned", "customer_id", customer.ID, "subscription_id", sub.ID)
	return cacheFor(customer.ID, sub), nil
}

func cacheFor(customerID string, sub *billing.Subscription) *domain.BillingCache {
	return &domain.BillingCache{
		CustomerID:         customerID,
		SubscriptionID:     sub.ID,
		PriceID:            sub.PriceID,
		SubscriptionStatus: sub.Status,
	}
}
