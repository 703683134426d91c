package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuotaPolicy_QuotaFor(t *testing.T) {
	p := DefaultQuotaPolicy()

	tests := []struct {
		name string
		tier Tier
		kind ResourceKind
		want int64
	}{
		{"free landing pages", TierFree, ResourceLandingPage, 3},
		{"premium landing pages", TierPremium, ResourceLandingPage, 20},
		{"free testimonials", TierFree, ResourceTestimonial, 10},
		{"premium testimonials", TierPremium, ResourceTestimonial, 500},
		{"free configs", TierFree, ResourceTestimonialConfig, 5},
		{"premium configs", TierPremium, ResourceTestimonialConfig, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.QuotaFor(tt.tier, tt.kind))
		})
	}
}

func TestQuotaPolicy_UnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() {
		DefaultQuotaPolicy().QuotaFor(TierFree, ResourceKind("WIDGET"))
	})
}

func TestTierForPrice(t *testing.T) {
	assert.Equal(t, TierFree, TierForPrice("price_free", "price_free"))
	assert.Equal(t, TierPremium, TierForPrice("price_premium", "price_free"))
	assert.Equal(t, TierPremium, TierForPrice("price_legacy", "price_free"))
}

func TestAllows(t *testing.T) {
	assert.True(t, Allows(0, 3))
	assert.True(t, Allows(2, 3))
	assert.False(t, Allows(3, 3))
	assert.False(t, Allows(4, 3))
	assert.False(t, Allows(0, 0))
}

func TestResourceKind_LimitReason(t *testing.T) {
	assert.Equal(t, ReasonLandingPageLimitReached, ResourceLandingPage.LimitReason())
	assert.Equal(t, ReasonTestimonialConfigLimitReached, ResourceTestimonialConfig.LimitReason())
	assert.Equal(t, ReasonTestimonialLimitReached, ResourceTestimonial.LimitReason())
}

func TestResourceUsage_Remaining(t *testing.T) {
	assert.Equal(t, int64(2), ResourceUsage{Used: 1, Limit: 3}.Remaining())
	assert.Equal(t, int64(0), ResourceUsage{Used: 3, Limit: 3}.Remaining())
	assert.Equal(t, int64(0), ResourceUsage{Used: 5, Limit: 3}.Remaining())
}
