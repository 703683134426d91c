// Package domain contains core business types and interfaces.
//
// This file defines LandingPage and its service parameters.
package domain

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

// LandingPage is a public page owned by one account that collects testimonials
// under exactly one TestimonialConfig.
type LandingPage struct {
	ID                  uuid.UUID
	AccountID           uuid.UUID
	TestimonialConfigID uuid.UUID
	Name                string
	Link                string
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// Populated by GetLandingPage, nil otherwise
	Config *TestimonialConfig
}

// CreateLandingPageParams contains validated parameters for creating a landing page.
type CreateLandingPageParams struct {
	AccountID           uuid.UUID
	TestimonialConfigID uuid.UUID
	Name                string
	Link                string
}

// Validate checks required fields and that Link is an absolute http(s) URL.
func (p CreateLandingPageParams) Validate(op string) error {
	if p.Name == "" {
		return NewValidationError(op, "name", "is required")
	}
	u, err := url.Parse(p.Link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewValidationError(op, "link", "must be an absolute http(s) URL")
	}
	if p.TestimonialConfigID == uuid.Nil {
		return NewValidationError(op, "testimonial_config_id", "is required")
	}
	return nil
}
