// Package domain contains core business types and interfaces.
//
// This file defines TestimonialConfig, the collection rules a landing page
// applies to its testimonials.
package domain

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// TestimonialFormat controls what a customer is asked to submit.
type TestimonialFormat string

const (
	TestimonialFormatText      TestimonialFormat = "TEXT"
	TestimonialFormatTextImage TestimonialFormat = "TEXT_AND_IMAGE"
)

// IsValid returns true if f is a known format.
func (f TestimonialFormat) IsValid() bool {
	return f == TestimonialFormatText || f == TestimonialFormatTextImage
}

// TestimonialConfig is owned by one account. Landing pages reference it, so
// edits apply retroactively to every referencing page.
type TestimonialConfig struct {
	ID               uuid.UUID
	AccountID        uuid.UUID
	Name             string
	Format           TestimonialFormat
	TitleCharLimit   int
	MessageCharLimit int
	ExpirationDays   int // days a testimonial link stays open after creation
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Deadline returns the last instant a testimonial created at createdAt can be completed.
func (c *TestimonialConfig) Deadline(createdAt time.Time) time.Time {
	return createdAt.Add(time.Duration(c.ExpirationDays) * 24 * time.Hour)
}

// CheckSubmission validates title and message against the character limits.
// The message limit is checked first.
func (c *TestimonialConfig) CheckSubmission(op, title, message string) error {
	if CharCount(message) > c.MessageCharLimit {
		return Invalid(op, ReasonMessageCharLimitExceeded)
	}
	if CharCount(title) > c.TitleCharLimit {
		return Invalid(op, ReasonTitleCharLimitExceeded)
	}
	return nil
}

// CharCount counts user-perceived characters as NFC code points, so a
// decomposed "é" counts once.
func CharCount(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

// TestimonialConfigParams contains validated parameters for creating or updating a config.
type TestimonialConfigParams struct {
	AccountID        uuid.UUID
	Name             string
	Format           TestimonialFormat
	TitleCharLimit   int
	MessageCharLimit int
	ExpirationDays   int
}

// Validate checks the parameters and returns a ValidationError listing every bad field.
func (p TestimonialConfigParams) Validate(op string) error {
	var verr *ValidationError
	add := func(field, msg string) {
		if verr == nil {
			verr = NewValidationError(op, field, msg)
			return
		}
		verr.Fields[field] = msg
	}
	if p.Name == "" {
		add("name", "is required")
	}
	if !p.Format.IsValid() {
		add("format", "is not a supported format")
	}
	if p.TitleCharLimit <= 0 {
		add("title_char_limit", "must be positive")
	}
	if p.MessageCharLimit <= 0 {
		add("message_char_limit", "must be positive")
	}
	if p.ExpirationDays <= 0 {
		add("expiration_limit", "must be positive")
	}
	if verr != nil {
		return verr
	}
	return nil
}
