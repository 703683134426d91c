// Package service contains the business logic layer.
//
// This file implements the quota service for reporting resource ceilings
// based on entitlement tier and recording refusals.
package service

import (
	"context"
	"log/slog"

	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/metrics"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// QuotaService resolves ceilings and records refusals. The ceiling itself is
// enforced by the store's conditional inserts.
type QuotaService interface {
	// Limit returns the ceiling for kind on tier.
	Limit(tier domain.Tier, kind domain.ResourceKind) int64

	// Rejected records a creation refused at the ceiling for kind and returns
	// the Conflict carrying the kind's limit reason. An empty tier means the
	// ceiling is flat.
	Rejected(op string, kind domain.ResourceKind, tier domain.Tier, scopeID uuid.UUID, limit int64) error

	// GetUsage returns the current usage for an account. Testimonials are
	// totalled across the account.
	GetUsage(ctx context.Context, accountID uuid.UUID, tier domain.Tier) (*domain.QuotaUsage, error)
}

// =============================================================================
// Implementation
// =============================================================================

type quotaService struct {
	policy  domain.QuotaPolicy
	counter ResourceCounter
	store   CounterStore
	logger  *slog.Logger
}

// NewQuotaService creates a new QuotaService.
func NewQuotaService(policy domain.QuotaPolicy, store CounterStore, logger *slog.Logger) QuotaService {
	return &quotaService{
		policy:  policy,
		counter: NewResourceCounter(store),
		store:   store,
		logger:  logger,
	}
}

func (s *quotaService) Limit(tier domain.Tier, kind domain.ResourceKind) int64 {
	return s.policy.QuotaFor(tier, kind)
}

func (s *quotaService) Rejected(op string, kind domain.ResourceKind, tier domain.Tier, scopeID uuid.UUID, limit int64) error {
	tierLabel := string(tier)
	if tierLabel == "" {
		tierLabel = "ANY"
	}
	s.logger.Info("quota exceeded",
		"op", op,
		"kind", kind,
		"scope_id", scopeID,
		"tier", tierLabel,
		"limit", limit,
	)
	metrics.QuotaRejected(string(kind), tierLabel)
	return domain.Conflict(op, kind.LimitReason())
}

// GetUsage returns the current quota usage for an account.
func (s *quotaService) GetUsage(ctx context.Context, accountID uuid.UUID, tier domain.Tier) (*domain.QuotaUsage, error) {
	const op = "quota.get_usage"

	pages, err := s.counter.CountLandingPages(ctx, accountID)
	if err != nil {
		return nil, err
	}
	configs, err := s.counter.CountTestimonialConfigs(ctx, accountID)
	if err != nil {
		return nil, err
	}
	testimonials, err := s.store.CountTestimonialsByAccount(ctx, accountID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to count testimonials")
	}

	return &domain.QuotaUsage{
		Tier: tier,
		LandingPages: domain.ResourceUsage{
			Used:  pages,
			Limit: s.policy.QuotaFor(tier, domain.ResourceLandingPage),
		},
		TestimonialConfigs: domain.ResourceUsage{
			Used:  configs,
			Limit: s.policy.QuotaFor(tier, domain.ResourceTestimonialConfig),
		},
		Testimonials: domain.ResourceUsage{
			Used:  testimonials,
			Limit: s.policy.QuotaFor(tier, domain.ResourceTestimonial),
		},
	}, nil
}
