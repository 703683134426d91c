// Package domain contains core business types and interfaces.
//
// This file defines verification requests: short-lived single-use codes bound
// to an identifier and a purpose.
package domain

import (
	"time"
)

const (
	// VerificationTTL is the default lifetime of an issued code.
	VerificationTTL = 5 * time.Minute

	// SignupVerificationTTL is used for the code issued at account registration.
	SignupVerificationTTL = 24 * time.Hour

	// PreSignupVerificationTTL is used for codes sent to emails with no account yet.
	PreSignupVerificationTTL = 20 * time.Minute

	// Codes are drawn uniformly from [VerificationCodeMin, VerificationCodeMax].
	VerificationCodeMin = 100000
	VerificationCodeMax = 999999
)

// VerificationType is the purpose a code was issued for.
type VerificationType string

const (
	VerificationEmail            VerificationType = "EMAIL_VERIFICATION"
	VerificationPasswordRecovery VerificationType = "PASSWORD_RECOVERY"
)

// IsValid returns true if t is a known verification type.
func (t VerificationType) IsValid() bool {
	return t == VerificationEmail || t == VerificationPasswordRecovery
}

// VerificationRequest is keyed by (Identifier, Type). At most one live request
// exists per key; an expired one may be replaced.
type VerificationRequest struct {
	Identifier string
	Type       VerificationType
	Token      string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// IsExpiredAt returns true if the request expired before now.
func (r *VerificationRequest) IsExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Public returns a copy safe to hand to an untrusted caller: the token is removed.
func (r *VerificationRequest) Public() VerificationRequest {
	out := *r
	out.Token = ""
	return out
}

// IssueVerificationParams contains parameters for issuing a code.
// Token and TTL are optional; zero values mean generate and VerificationTTL.
type IssueVerificationParams struct {
	Identifier string
	Type       VerificationType
	Token      string
	TTL        time.Duration
}

// VerificationGrant proves a code was validated. It is a signed token the
// holder presents to a follow-up flow such as password recovery.
type VerificationGrant struct {
	Token      string
	Identifier string
	Type       VerificationType
	ExpiresAt  time.Time
}
