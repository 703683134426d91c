package handler

import (
	"time"

	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/google/uuid"
)

// =============================================================================
// Response Types
// =============================================================================

type accountView struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	CompanyName        string     `json:"company_name,omitempty"`
	Image              string     `json:"image,omitempty"`
	EmailVerifiedAt    *time.Time `json:"email_verified_at"`
	SubscriptionStatus string     `json:"subscription_status,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func newAccountView(a *domain.Account) accountView {
	return accountView{
		ID:                 a.ID,
		Email:              a.Email,
		Name:               a.Name,
		CompanyName:        a.CompanyName,
		Image:              a.Image,
		EmailVerifiedAt:    a.EmailVerifiedAt,
		SubscriptionStatus: string(a.Billing.SubscriptionStatus),
		CreatedAt:          a.CreatedAt,
	}
}

type configView struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Format           string    `json:"format"`
	TitleCharLimit   int       `json:"title_char_limit"`
	MessageCharLimit int       `json:"message_char_limit"`
	ExpirationDays   int       `json:"expiration_days"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newConfigView(c *domain.TestimonialConfig) configView {
	return configView{
		ID:               c.ID,
		Name:             c.Name,
		Format:           string(c.Format),
		TitleCharLimit:   c.TitleCharLimit,
		MessageCharLimit: c.MessageCharLimit,
		ExpirationDays:   c.ExpirationDays,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

type landingPageView struct {
	ID                  uuid.UUID   `json:"id"`
	TestimonialConfigID uuid.UUID   `json:"testimonial_config_id"`
	Name                string      `json:"name"`
	Link                string      `json:"link"`
	Config              *configView `json:"testimonial_config,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

func newLandingPageView(p *domain.LandingPage) landingPageView {
	v := landingPageView{
		ID:                  p.ID,
		TestimonialConfigID: p.TestimonialConfigID,
		Name:                p.Name,
		Link:                p.Link,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
	if p.Config != nil {
		cv := newConfigView(p.Config)
		v.Config = &cv
	}
	return v
}

type testimonialView struct {
	ID            uuid.UUID `json:"id"`
	LandingPageID uuid.UUID `json:"landing_page_id"`
	Status        string    `json:"status"`
	CustomerName  string    `json:"customer_name,omitempty"`
	Title         string    `json:"title,omitempty"`
	Message       string    `json:"message,omitempty"`
	Stars         int       `json:"stars,omitempty"`
	Image         string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newTestimonialView(t *domain.Testimonial) testimonialView {
	return testimonialView{
		ID:            t.ID,
		LandingPageID: t.LandingPageID,
		Status:        string(t.Status),
		CustomerName:  t.CustomerName,
		Title:         t.Title,
		Message:       t.Message,
		Stars:         t.Stars,
		Image:         t.Image,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

type completionView struct {
	Testimonial       testimonialView `json:"testimonial"`
	ImageAttachFailed bool            `json:"image_attach_failed"`
}

func newCompletionView(r *domain.CompletionResult) completionView {
	return completionView{
		Testimonial:       newTestimonialView(r.Testimonial),
		ImageAttachFailed: r.ImageAttachFailed,
	}
}

type verificationView struct {
	Identifier string    `json:"identifier"`
	Type       string    `json:"type"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// newVerificationView never carries the code.
func newVerificationView(r *domain.VerificationRequest) verificationView {
	return verificationView{
		Identifier: r.Identifier,
		Type:       string(r.Type),
		ExpiresAt:  r.ExpiresAt,
	}
}

type entitlementView struct {
	Tier          string    `json:"tier"`
	DaysRemaining int       `json:"days_remaining"`
	PeriodEnd     time.Time `json:"period_end"`
}

func newEntitlementView(e *domain.Entitlement) entitlementView {
	return entitlementView{
		Tier:          string(e.Tier),
		DaysRemaining: e.DaysRemaining,
		PeriodEnd:     e.PeriodEnd,
	}
}
