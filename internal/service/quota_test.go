package service

import (
	"errors"
	"testing"

	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaService_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		kind       domain.ResourceKind
		tier       domain.Tier
		wantLabel  string
		wantReason string
	}{
		{"landing page on free", domain.ResourceLandingPage, domain.TierFree, "FREE", domain.ReasonLandingPageLimitReached},
		{"flat config ceiling", domain.ResourceTestimonialConfig, "", "ANY", domain.ReasonTestimonialConfigLimitReached},
		{"testimonial on premium", domain.ResourceTestimonial, domain.TierPremium, "PREMIUM", domain.ReasonTestimonialLimitReached},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			counter := metrics.QuotaRejectionsTotal.WithLabelValues(string(tt.kind), tt.wantLabel)
			before := testutil.ToFloat64(counter)

			err := h.quota.Rejected("test.create", tt.kind, tt.tier, uuid.New(), 3)
			require.Error(t, err)
			assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
			assert.Equal(t, tt.wantReason, domain.ErrorReason(err))
			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestLandingPageService_CreateAtLimitRecordsRejection(t *testing.T) {
	h := newHarness(t)
	svc := newLandingPageService(h)
	account := h.seedAccountOnPrice(t, testPrices.FreePriceID)
	cfg := h.store.seedConfig(t, account.ID, 7)
	for i := 0; i < 3; i++ {
		h.store.seedPage(t, account.ID, cfg.ID)
	}

	counter := metrics.QuotaRejectionsTotal.WithLabelValues(string(domain.ResourceLandingPage), string(domain.TierFree))
	before := testutil.ToFloat64(counter)

	_, err := svc.Create(t.Context(), pageParams(account.ID, cfg.ID))
	require.Error(t, err)
	assert.Equal(t, domain.ReasonLandingPageLimitReached, domain.ErrorReason(err))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestQuotaService_GetUsageCountFailure(t *testing.T) {
	h := newHarness(t)
	h.store.countErr = errors.New("connection reset")

	_, err := h.quota.GetUsage(t.Context(), uuid.New(), domain.TierFree)
	require.Error(t, err)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
}

func TestQuotaService_Limit(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, int64(3), h.quota.Limit(domain.TierFree, domain.ResourceLandingPage))
	assert.Equal(t, int64(20), h.quota.Limit(domain.TierPremium, domain.ResourceLandingPage))
	assert.Equal(t, int64(10), h.quota.Limit(domain.TierFree, domain.ResourceTestimonial))
	assert.Equal(t, int64(500), h.quota.Limit(domain.TierPremium, domain.ResourceTestimonial))
	assert.Equal(t,
		h.quota.Limit(domain.TierFree, domain.ResourceTestimonialConfig),
		h.quota.Limit(domain.TierPremium, domain.ResourceTestimonialConfig),
	)
}

func TestQuotaService_GetUsage(t *testing.T) {
	h := newHarness(t)
	account := h.store.seedAccount(t, domain.BillingCache{})
	cfg := h.store.seedConfig(t, account.ID, 5)
	p1 := h.store.seedPage(t, account.ID, cfg.ID)
	p2 := h.store.seedPage(t, account.ID, cfg.ID)
	h.store.seedTestimonial(t, p1, domain.TestimonialStatusPending)
	h.store.seedTestimonial(t, p1, domain.TestimonialStatusApproved)
	h.store.seedTestimonial(t, p2, domain.TestimonialStatusRejected)

	// Another account's rows do not count.
	other := h.store.seedAccount(t, domain.BillingCache{})
	h.store.seedConfig(t, other.ID, 5)

	usage, err := h.quota.GetUsage(t.Context(), account.ID, domain.TierFree)
	require.NoError(t, err)

	assert.Equal(t, domain.TierFree, usage.Tier)
	assert.Equal(t, domain.ResourceUsage{Used: 2, Limit: 3}, usage.LandingPages)
	assert.Equal(t, domain.ResourceUsage{Used: 1, Limit: 5}, usage.TestimonialConfigs)
	assert.Equal(t, domain.ResourceUsage{Used: 3, Limit: 10}, usage.Testimonials)
	assert.Equal(t, int64(1), usage.LandingPages.Remaining())
}
