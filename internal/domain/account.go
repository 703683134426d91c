// Package domain contains core business types and interfaces.
//
// This file defines the Account domain type (the admin who owns landing pages)
// and the parameter types for the two disjoint write paths on an account:
// profile edits and billing synchronization.
package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus mirrors the billing provider's subscription status.
type SubscriptionStatus string

const (
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
	SubscriptionStatusTrialing   SubscriptionStatus = "trialing"
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
	SubscriptionStatusUnpaid     SubscriptionStatus = "unpaid"
)

// BillingCache is the account's local copy of its billing provider state.
// All fields are empty until email verification provisions a customer.
type BillingCache struct {
	CustomerID         string
	SubscriptionID     string
	PriceID            string
	SubscriptionStatus SubscriptionStatus
}

// IsProvisioned returns true once a billing customer has been attached.
func (b BillingCache) IsProvisioned() bool {
	return b.CustomerID != ""
}

// Tier classifies the cached price. An account with no price yet is free.
func (b BillingCache) Tier(freePriceID string) Tier {
	if b.PriceID == "" {
		return TierFree
	}
	return TierForPrice(b.PriceID, freePriceID)
}

// Account represents an admin of the platform.
//
// PriceID inside Billing is the single source of truth for the account's tier.
// It is only written through BillingSyncParams, never through ProfileUpdateParams.
type Account struct {
	ID              uuid.UUID
	Email           string
	PasswordHash    string // Never expose this in API responses
	Name            string
	CompanyName     string
	Image           string
	Billing         BillingCache
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsEmailVerified returns true if the account has completed email verification.
func (a *Account) IsEmailVerified() bool {
	return a.EmailVerifiedAt != nil
}

// DisplayName returns the account's name or email if name is empty.
func (a *Account) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}

// RegisterParams contains the validated parameters for account registration.
type RegisterParams struct {
	Email       string
	Password    string // Raw password, will be hashed by service
	Name        string
	CompanyName string // Optional
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Account     *Account
	AccessToken string
	ExpiresAt   time.Time
}

// ProfileUpdateParams contains the fields an account owner may edit.
// It has no billing fields; those change only through billing sync.
type ProfileUpdateParams struct {
	AccountID   uuid.UUID
	Name        string
	CompanyName string
	Image       string
}

// BillingSyncParams overwrites the cached billing state of an account.
// Only the billing synchronizer and email verification construct it.
type BillingSyncParams struct {
	AccountID          uuid.UUID
	CustomerID         string
	SubscriptionID     string
	PriceID            string
	SubscriptionStatus SubscriptionStatus
}

// ResourceUsage is the used/limit pair for one resource kind.
type ResourceUsage struct {
	Used  int64 `json:"used"`
	Limit int64 `json:"limit"`
}

// Remaining returns how many more resources can be created.
func (u ResourceUsage) Remaining() int64 {
	if u.Used >= u.Limit {
		return 0
	}
	return u.Limit - u.Used
}

// QuotaUsage reports an account's usage across every quota-counted resource.
// Testimonials are counted account-wide here; the ceiling applies per landing page.
type QuotaUsage struct {
	Tier               Tier          `json:"tier"`
	LandingPages       ResourceUsage `json:"landing_pages"`
	TestimonialConfigs ResourceUsage `json:"testimonial_configs"`
	Testimonials       ResourceUsage `json:"testimonials"`
}

// =============================================================================
// Conversion helpers from repository types
// =============================================================================

// NullStringValue safely extracts a string from sql.NullString.
func NullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// NullTimeValue safely extracts a time pointer from sql.NullTime.
func NullTimeValue(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}

// NullInt16Value safely extracts an int from sql.NullInt16.
func NullInt16Value(n sql.NullInt16) int {
	if n.Valid {
		return int(n.Int16)
	}
	return 0
}

// ToNullString converts a string to sql.NullString.
func ToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
