// Package service contains the business logic layer.
//
// Services orchestrate interactions between the record store, the billing
// provider and the other external collaborators. They are responsible for:
// - Input validation
// - Business rule enforcement
// - Error translation (store errors -> domain errors)
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/repository"
	"github.com/google/uuid"
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

// =============================================================================
// Store Interfaces
// =============================================================================
//
// Each service depends only on the slice of *repository.Store it uses.

// AccountStore persists accounts and their billing cache.
type AccountStore interface {
	CreateAccount(ctx context.Context, email, passwordHash, name, companyName string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindAccountByBilling(ctx context.Context, customerID, subscriptionID string) (*domain.Account, error)
	UpdateAccountProfile(ctx context.Context, params domain.ProfileUpdateParams) (*domain.Account, error)
	UpdateAccountPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	ApplyBillingSync(ctx context.Context, params domain.BillingSyncParams) (*domain.Account, error)
	MarkEmailVerified(ctx context.Context, params domain.BillingSyncParams, identifier string, verifiedAt time.Time) (*domain.Account, error)
}

// CounterStore counts quota-scoped resources.
type CounterStore interface {
	CountLandingPages(ctx context.Context, accountID uuid.UUID) (int64, error)
	CountTestimonialConfigs(ctx context.Context, accountID uuid.UUID) (int64, error)
	CountTestimonials(ctx context.Context, landingPageID uuid.UUID) (int64, error)
	CountTestimonialsByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// TestimonialConfigStore persists testimonial configs.
type TestimonialConfigStore interface {
	CreateTestimonialConfigWithinQuota(ctx context.Context, params domain.TestimonialConfigParams, limit int64) (*domain.TestimonialConfig, error)
	GetTestimonialConfig(ctx context.Context, id uuid.UUID) (*domain.TestimonialConfig, error)
	GetTestimonialConfigForAccount(ctx context.Context, id, accountID uuid.UUID) (*domain.TestimonialConfig, error)
	ListTestimonialConfigs(ctx context.Context, accountID uuid.UUID, page domain.PageParams) ([]domain.TestimonialConfig, int64, error)
	UpdateTestimonialConfig(ctx context.Context, id uuid.UUID, params domain.TestimonialConfigParams) (*domain.TestimonialConfig, error)
	DeleteTestimonialConfig(ctx context.Context, id, accountID uuid.UUID) error
}

// LandingPageStore persists landing pages.
type LandingPageStore interface {
	CreateLandingPageWithinQuota(ctx context.Context, params domain.CreateLandingPageParams, limit int64) (*domain.LandingPage, error)
	GetLandingPage(ctx context.Context, id uuid.UUID) (*domain.LandingPage, error)
	GetLandingPageForAccount(ctx context.Context, id, accountID uuid.UUID) (*domain.LandingPage, error)
	ListLandingPages(ctx context.Context, accountID uuid.UUID, page domain.PageParams) ([]domain.LandingPage, int64, error)
	DeleteLandingPages(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (int64, error)
}

// TestimonialStore persists testimonials.
type TestimonialStore interface {
	CreateTestimonialWithinQuota(ctx context.Context, landingPageID uuid.UUID, limit int64) (*domain.Testimonial, error)
	GetTestimonial(ctx context.Context, id uuid.UUID) (*domain.Testimonial, error)
	GetTestimonialForAccount(ctx context.Context, id, accountID uuid.UUID) (*domain.Testimonial, error)
	CompleteTestimonial(ctx context.Context, params repository.CompleteParams) (*domain.Testimonial, error)
	UpdateTestimonial(ctx context.Context, id, accountID uuid.UUID, u domain.TestimonialUpdate, image *string) (*domain.Testimonial, error)
	ListTestimonials(ctx context.Context, params domain.ListTestimonialsParams) ([]domain.Testimonial, int64, error)
	DeleteTestimonials(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (int64, error)
}

// VerificationStore persists verification requests keyed by (identifier, type).
type VerificationStore interface {
	GetVerificationRequest(ctx context.Context, identifier string, typ domain.VerificationType) (*domain.VerificationRequest, error)
	IssueVerificationRequest(ctx context.Context, req domain.VerificationRequest, now time.Time) (*domain.VerificationRequest, error)
	DeleteVerificationRequest(ctx context.Context, identifier string, typ domain.VerificationType) error
}

var _ interface {
	AccountStore
	CounterStore
	TestimonialConfigStore
	LandingPageStore
	TestimonialStore
	VerificationStore
} = (*repository.Store)(nil)

// EmailQueue enqueues an email for asynchronous delivery.
type EmailQueue interface {
	Enqueue(ctx context.Context, to, subject, body string) error
}

// isNotFound reports whether err is the store's not-found signal.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// storeErr translates a store error. Not-found becomes NotFound with reason;
// anything else is Internal with message.
func storeErr(err error, op, reason, message string) error {
	if isNotFound(err) {
		return domain.NotFound(op, reason)
	}
	return domain.Internal(err, op, message)
}
