// Package domain contains core business types and interfaces.
//
// This file defines the Testimonial domain type and its lifecycle.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Testimonial Status
// =============================================================================

// TestimonialStatus represents the lifecycle state of a testimonial.
type TestimonialStatus string

const (
	// TestimonialStatusPending is a link that has not been completed yet.
	TestimonialStatusPending TestimonialStatus = "PENDING"

	// TestimonialStatusApproved is a completed testimonial cleared for display.
	TestimonialStatusApproved TestimonialStatus = "APPROVED"

	// TestimonialStatusRejected is a completed testimonial held back by moderation.
	TestimonialStatusRejected TestimonialStatus = "REJECTED"
)

// String returns the string representation of the status.
func (s TestimonialStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s TestimonialStatus) IsValid() bool {
	switch s {
	case TestimonialStatusPending, TestimonialStatusApproved, TestimonialStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether completion may move s to target.
// Only PENDING -> APPROVED and PENDING -> REJECTED are allowed.
func (s TestimonialStatus) CanTransitionTo(target TestimonialStatus) bool {
	if s != TestimonialStatusPending {
		return false
	}
	return target == TestimonialStatusApproved || target == TestimonialStatusRejected
}

// ModerationStatus maps a sentiment verdict to a status.
func ModerationStatus(positive bool) TestimonialStatus {
	if positive {
		return TestimonialStatusApproved
	}
	return TestimonialStatusRejected
}

// =============================================================================
// Testimonial Domain Type
// =============================================================================

// Testimonial belongs to one landing page. Submission fields are empty until
// the link is completed.
type Testimonial struct {
	ID            uuid.UUID
	LandingPageID uuid.UUID
	AccountID     uuid.UUID // owner of the landing page
	Status        TestimonialStatus
	CustomerName  string
	Title         string
	Message       string
	Stars         int
	Image         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsPending returns true if the link is still open for completion.
func (t *Testimonial) IsPending() bool {
	return t.Status == TestimonialStatusPending
}

// IsExpiredAt reports whether the completion window closed before now.
// Completing exactly at the deadline is allowed.
func (t *Testimonial) IsExpiredAt(cfg *TestimonialConfig, now time.Time) bool {
	return now.After(cfg.Deadline(t.CreatedAt))
}

// =============================================================================
// Testimonial Service Parameters
// =============================================================================

// Submission is what a customer sends when completing a testimonial link.
type Submission struct {
	CustomerName string
	Title        string
	Message      string
	Stars        int
}

// Validate checks the fields that do not depend on the config.
func (s Submission) Validate(op string) error {
	if s.CustomerName == "" {
		return NewValidationError(op, "customer_name", "is required")
	}
	if s.Stars < 1 || s.Stars > 5 {
		return NewValidationError(op, "stars", "must be between 1 and 5")
	}
	return nil
}

// ImageFile is an uploaded image attached to a submission or update.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// TestimonialUpdate is the owner's partial edit. Nil fields are left unchanged.
type TestimonialUpdate struct {
	CustomerName *string
	Title        *string
	Message      *string
	Stars        *int
	Status       *TestimonialStatus
}

// Validate checks any set fields.
func (u TestimonialUpdate) Validate(op string) error {
	if u.Stars != nil && (*u.Stars < 1 || *u.Stars > 5) {
		return NewValidationError(op, "stars", "must be between 1 and 5")
	}
	if u.Status != nil && !u.Status.IsValid() {
		return NewValidationError(op, "status", "is not a valid status")
	}
	return nil
}

// CompletionResult is returned by testimonial completion and update.
// ImageAttachFailed is set when an image was supplied but could not be stored;
// Image is then left empty.
type CompletionResult struct {
	Testimonial       *Testimonial
	ImageAttachFailed bool
}

// ListTestimonialsParams filters testimonial lists.
type ListTestimonialsParams struct {
	AccountID     uuid.UUID
	LandingPageID *uuid.UUID
	Status        *TestimonialStatus
	CustomerName  string // substring match
	Stars         *int
	Page          PageParams
}
