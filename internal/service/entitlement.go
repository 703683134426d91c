package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DukeRupert/vouch/internal/billing"
	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/google/uuid"
)

// EntitlementResolver determines an account's tier against the billing provider.
type EntitlementResolver interface {
	// CurrentTier loads the account and resolves it.
	// Returns domain.ENOTFOUND (SUBSCRIPTION_NOT_FOUND) when entitlement cannot
	// be determined. Callers must not fall back to FREE.
	CurrentTier(ctx context.Context, accountID uuid.UUID) (*domain.Entitlement, error)

	// Resolve is CurrentTier for an already loaded account.
	Resolve(ctx context.Context, account *domain.Account) (*domain.Entitlement, error)
}

type entitlementResolver struct {
	accounts AccountStore
	provider billing.Provider
	prices   billing.PriceConfig
	clock    Clock
	logger   *slog.Logger
}

// NewEntitlementResolver creates a new EntitlementResolver.
func NewEntitlementResolver(accounts AccountStore, provider billing.Provider, prices billing.PriceConfig, clock Clock, logger *slog.Logger) EntitlementResolver {
	return &entitlementResolver{
		accounts: accounts,
		provider: provider,
		prices:   prices,
		clock:    clock,
		logger:   logger,
	}
}

func (r *entitlementResolver) CurrentTier(ctx context.Context, accountID uuid.UUID) (*domain.Entitlement, error) {
	const op = "entitlement.current_tier"

	account, err := r.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonAccountNotFound, "failed to get account")
	}
	return r.Resolve(ctx, account)
}

func (r *entitlementResolver) Resolve(ctx context.Context, account *domain.Account) (*domain.Entitlement, error) {
	const op = "entitlement.resolve"

	if account.Billing.SubscriptionID == "" {
		return nil, domain.NotFound(op, domain.ReasonSubscriptionNotFound)
	}

	sub, err := r.provider.GetSubscription(ctx, account.Billing.SubscriptionID)
	if errors.Is(err, billing.ErrNotFound) {
		r.logger.Warn("cached subscription missing at billing provider",
			"account_id", account.ID,
			"subscription_id", account.Billing.SubscriptionID,
		)
		return nil, domain.NotFound(op, domain.ReasonSubscriptionNotFound)
	}
	if err != nil {
		return nil, domain.Internal(err, op, "failed to retrieve subscription")
	}

	// Tier follows the cached price; the provider only supplies the period.
	return &domain.Entitlement{
		Tier:          account.Billing.Tier(r.prices.FreePriceID),
		DaysRemaining: int(sub.CurrentPeriodEnd.Sub(r.clock.now()) / (24 * time.Hour)),
		PeriodEnd:     sub.CurrentPeriodEnd,
	}, nil
}
