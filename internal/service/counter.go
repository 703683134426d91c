package service

import (
	"context"

	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/google/uuid"
)

// ResourceCounter counts quota-scoped resources. Counts are always read fresh
// from the store.
type ResourceCounter interface {
	CountLandingPages(ctx context.Context, accountID uuid.UUID) (int64, error)
	CountTestimonialConfigs(ctx context.Context, accountID uuid.UUID) (int64, error)
	CountTestimonials(ctx context.Context, landingPageID uuid.UUID) (int64, error)
}

type resourceCounter struct {
	store CounterStore
}

// NewResourceCounter creates a ResourceCounter over store.
func NewResourceCounter(store CounterStore) ResourceCounter {
	return &resourceCounter{store: store}
}

func (c *resourceCounter) CountLandingPages(ctx context.Context, accountID uuid.UUID) (int64, error) {
	const op = "counter.landing_pages"
	n, err := c.store.CountLandingPages(ctx, accountID)
	if err != nil {
		return 0, domain.Internal(err, op, "failed to count landing pages")
	}
	return n, nil
}

func (c *resourceCounter) CountTestimonialConfigs(ctx context.Context, accountID uuid.UUID) (int64, error) {
	const op = "counter.testimonial_configs"
	n, err := c.store.CountTestimonialConfigs(ctx, accountID)
	if err != nil {
		return 0, domain.Internal(err, op, "failed to count testimonial configs")
	}
	return n, nil
}

func (c *resourceCounter) CountTestimonials(ctx context.Context, landingPageID uuid.UUID) (int64, error) {
	const op = "counter.testimonials"
	n, err := c.store.CountTestimonials(ctx, landingPageID)
	if err != nil {
		return 0, domain.Internal(err, op, "failed to count testimonials")
	}
	return n, nil
}
