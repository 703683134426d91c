// Package domain contains core business types and interfaces.
//
// This file defines entitlement tiers, quota-counted resource kinds and the
// quota policy that maps the two to a ceiling.
package domain

import (
	"fmt"
	"time"
)

// Tier is the entitlement level derived from an account's cached price id.
type Tier string

const (
	TierFree    Tier = "FREE"
	TierPremium Tier = "PREMIUM"
)

// TierForPrice classifies a price id. Anything other than the free price is premium.
func TierForPrice(priceID, freePriceID string) Tier {
	if priceID == freePriceID {
		return TierFree
	}
	return TierPremium
}

// ResourceKind identifies a quota-counted resource.
type ResourceKind string

const (
	ResourceLandingPage       ResourceKind = "LANDING_PAGE"
	ResourceTestimonialConfig ResourceKind = "TESTIMONIAL_CONFIG"
	ResourceTestimonial       ResourceKind = "TESTIMONIAL"
)

// LimitReason returns the Conflict reason key raised when kind is at its ceiling.
func (k ResourceKind) LimitReason() string {
	switch k {
	case ResourceLandingPage:
		return ReasonLandingPageLimitReached
	case ResourceTestimonialConfig:
		return ReasonTestimonialConfigLimitReached
	case ResourceTestimonial:
		return ReasonTestimonialLimitReached
	}
	panic(fmt.Sprintf("domain: unknown resource kind %q", string(k)))
}

// QuotaPolicy holds the configured ceilings. Testimonial config ceilings are
// flat across tiers.
type QuotaPolicy struct {
	FreeLandingPages    int64
	PremiumLandingPages int64
	FreeTestimonials    int64
	PremiumTestimonials int64
	TestimonialConfigs  int64
}

// DefaultQuotaPolicy returns the ceilings used when nothing is configured.
func DefaultQuotaPolicy() QuotaPolicy {
	return QuotaPolicy{
		FreeLandingPages:    3,
		PremiumLandingPages: 20,
		FreeTestimonials:    10,
		PremiumTestimonials: 500,
		TestimonialConfigs:  5,
	}
}

// QuotaFor returns the ceiling for kind on tier. An unknown kind is a
// programming error and panics.
func (p QuotaPolicy) QuotaFor(tier Tier, kind ResourceKind) int64 {
	switch kind {
	case ResourceLandingPage:
		if tier == TierPremium {
			return p.PremiumLandingPages
		}
		return p.FreeLandingPages
	case ResourceTestimonial:
		if tier == TierPremium {
			return p.PremiumTestimonials
		}
		return p.FreeTestimonials
	case ResourceTestimonialConfig:
		return p.TestimonialConfigs
	}
	panic(fmt.Sprintf("domain: unknown resource kind %q", string(kind)))
}

// Allows reports whether one more resource fits under limit given the current count.
func Allows(count, limit int64) bool {
	return count < limit
}

// Entitlement is an account's current tier as confirmed by the billing provider.
type Entitlement struct {
	Tier          Tier
	DaysRemaining int
	PeriodEnd     time.Time
}

// CancellationResult is returned after a premium subscription is scheduled to
// end and a free one is queued to start when it does.
type CancellationResult struct {
	OldSubscriptionID string
	NewSubscriptionID string
	Status            string
}
