package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DukeRupert/vouch/internal/ai"
	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/metrics"
	"github.com/DukeRupert/vouch/internal/repository"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// TestimonialService drives testimonials from link creation to a moderated
// submission.
type TestimonialService interface {
	// CreateLink creates a PENDING testimonial on a landing page the account owns.
	// Returns domain.ECONFLICT (TESTIMONIAL_LIMIT_REACHED) when the page is full.
	CreateLink(ctx context.Context, accountID, landingPageID uuid.UUID) (*domain.Testimonial, error)

	// Complete records a customer's submission on a pending link. The image is
	// optional and best-effort; see domain.CompletionResult.
	Complete(ctx context.Context, testimonialID uuid.UUID, submission domain.Submission, image *domain.ImageFile) (*domain.CompletionResult, error)

	// Update is the owner's edit path. Expiry and quota do not apply.
	Update(ctx context.Context, accountID, testimonialID uuid.UUID, update domain.TestimonialUpdate, image *domain.ImageFile) (*domain.CompletionResult, error)

	// Get returns a testimonial by id without an ownership check, for the
	// public completion page.
	Get(ctx context.Context, testimonialID uuid.UUID) (*domain.Testimonial, error)

	// GetForAccount returns a testimonial the account owns.
	GetForAccount(ctx context.Context, accountID, testimonialID uuid.UUID) (*domain.Testimonial, error)

	// List returns the account's testimonials, optionally narrowed to one landing page.
	List(ctx context.Context, params domain.ListTestimonialsParams) (*domain.Page[domain.Testimonial], error)

	// Delete removes one testimonial the account owns.
	Delete(ctx context.Context, accountID, testimonialID uuid.UUID) error

	// DeleteMany removes the listed testimonials the account owns and reports
	// how many were deleted.
	DeleteMany(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (int64, error)
}

// =============================================================================
// Implementation
// =============================================================================

type testimonialService struct {
	testimonials TestimonialStore
	pages        LandingPageStore
	configs      TestimonialConfigStore
	entitlement  EntitlementResolver
	quota        QuotaService
	counter      ResourceCounter
	classifier   ai.SentimentClassifier
	images       ImageUploader
	clock        Clock
	logger       *slog.Logger
}

// TestimonialDeps groups the collaborators of TestimonialService.
type TestimonialDeps struct {
	Testimonials TestimonialStore
	LandingPages LandingPageStore
	Configs      TestimonialConfigStore
	Counts       CounterStore
	Entitlement  EntitlementResolver
	Quota        QuotaService
	Classifier   ai.SentimentClassifier
	Images       ImageUploader
	Clock        Clock
}

// NewTestimonialService creates a new TestimonialService.
func NewTestimonialService(deps TestimonialDeps, logger *slog.Logger) TestimonialService {
	return &testimonialService{
		testimonials: deps.Testimonials,
		pages:        deps.LandingPages,
		configs:      deps.Configs,
		entitlement:  deps.Entitlement,
		quota:        deps.Quota,
		counter:      NewResourceCounter(deps.Counts),
		classifier:   deps.Classifier,
		images:       deps.Images,
		clock:        deps.Clock,
		logger:       logger,
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

func (s *testimonialService) CreateLink(ctx context.Context, accountID, landingPageID uuid.UUID) (*domain.Testimonial, error) {
	const op = "testimonial.create_link"

	if _, err := s.pages.GetLandingPageForAccount(ctx, landingPageID, accountID); err != nil {
		return nil, storeErr(err, op, domain.ReasonLandingPageNotFound, "failed to get landing page")
	}

	ent, err := s.entitlement.CurrentTier(ctx, accountID)
	if err != nil {
		return nil, err
	}
	limit := s.quota.Limit(ent.Tier, domain.ResourceTestimonial)

	t, err := s.testimonials.CreateTestimonialWithinQuota(ctx, landingPageID, limit)
	if errors.Is(err, repository.ErrLimitReached) {
		return nil, s.quota.Rejected(op, domain.ResourceTestimonial, ent.Tier, landingPageID, limit)
	}
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonLandingPageNotFound, "failed to create testimonial")
	}

	s.logger.Info("testimonial link created", "testimonial_id", t.ID, "landing_page_id", landingPageID)
	return t, nil
}

// Complete checks run in order: existence, expiry, character limits, quota,
// moderation. The image is attached last and never fails the completion.
func (s *testimonialService) Complete(ctx context.Context, testimonialID uuid.UUID, submission domain.Submission, image *domain.ImageFile) (*domain.CompletionResult, error) {
	const op = "testimonial.complete"

	t, err := s.testimonials.GetTestimonial(ctx, testimonialID)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonTestimonialNotFound, "failed to get testimonial")
	}

	page, err := s.pages.GetLandingPage(ctx, t.LandingPageID)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonLandingPageNotFound, "failed to get landing page")
	}
	cfg, err := s.configs.GetTestimonialConfig(ctx, page.TestimonialConfigID)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonTestimonialConfigNotFound, "failed to get testimonial config")
	}

	if t.IsExpiredAt(cfg, s.clock.now()) {
		return nil, domain.Conflict(op, domain.ReasonTestimonialExpired)
	}
	if !t.IsPending() {
		return nil, domain.Conflict(op, domain.ReasonTestimonialAlreadyCompleted)
	}

	if err := submission.Validate(op); err != nil {
		return nil, err
	}
	if err := cfg.CheckSubmission(op, submission.Title, submission.Message); err != nil {
		return nil, err
	}

	ent, err := s.entitlement.CurrentTier(ctx, page.AccountID)
	if err != nil {
		return nil, err
	}

	// The pending link itself is already counted.
	count, err := s.counter.CountTestimonials(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	limit := s.quota.Limit(ent.Tier, domain.ResourceTestimonial)
	if !domain.Allows(count-1, limit) {
		return nil, s.quota.Rejected(op, domain.ResourceTestimonial, ent.Tier, page.ID, limit)
	}

	status := domain.TestimonialStatusApproved
	if ent.Tier == domain.TierPremium {
		positive, err := s.classifier.ClassifySentiment(ctx, submission.Message)
		metrics.ClassifierCalled(err)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to classify testimonial")
		}
		status = domain.ModerationStatus(positive)
	}

	imageURL, attachFailed := s.attachImage(ctx, t.ID, image)

	completed, err := s.testimonials.CompleteTestimonial(ctx, repository.CompleteParams{
		ID:         t.ID,
		Status:     status,
		Submission: submission,
		Image:      imageURL,
	})
	if err != nil {
		s.discardImage(ctx, imageURL)
	}
	if errors.Is(err, repository.ErrNotPending) {
		return nil, domain.Conflict(op, domain.ReasonTestimonialAlreadyCompleted)
	}
	if err != nil {
		return nil, domain.Internal(err, op, "failed to complete testimonial")
	}

	s.logger.Info("testimonial completed",
		"testimonial_id", completed.ID,
		"landing_page_id", page.ID,
		"tier", ent.Tier,
		"status", completed.Status,
		"image_attach_failed", attachFailed,
	)
	metrics.TestimonialCompleted(string(completed.Status))

	return &domain.CompletionResult{
		Testimonial:       completed,
		ImageAttachFailed: attachFailed,
	}, nil
}

func (s *testimonialService) Update(ctx context.Context, accountID, testimonialID uuid.UUID, update domain.TestimonialUpdate, image *domain.ImageFile) (*domain.CompletionResult, error) {
	const op = "testimonial.update"

	if err := update.Validate(op); err != nil {
		return nil, err
	}

	existing, err := s.testimonials.GetTestimonialForAccount(ctx, testimonialID, accountID)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonTestimonialNotFound, "failed to get testimonial")
	}

	var imageRef *string
	var attachFailed bool
	if image != nil {
		url, failed := s.attachImage(ctx, testimonialID, image)
		imageRef, attachFailed = &url, failed
	}

	updated, err := s.testimonials.UpdateTestimonial(ctx, testimonialID, accountID, update, imageRef)
	if err != nil {
		if imageRef != nil {
			s.discardImage(ctx, *imageRef)
		}
		return nil, storeErr(err, op, domain.ReasonTestimonialNotFound, "failed to update testimonial")
	}

	// The replaced image is no longer referenced.
	if imageRef != nil && !attachFailed && existing.Image != "" && existing.Image != *imageRef {
		s.discardImage(ctx, existing.Image)
	}

	s.logger.Info("testimonial updated", "testimonial_id", testimonialID, "account_id", accountID)

	return &domain.CompletionResult{
		Testimonial:       updated,
		ImageAttachFailed: attachFailed,
	}, nil
}

// attachImage uploads image if present. A failed upload yields an empty
// reference and failed=true.
func (s *testimonialService) attachImage(ctx context.Context, testimonialID uuid.UUID, image *domain.ImageFile) (url string, failed bool) {
	if image == nil {
		return "", false
	}
	url, err := s.images.Upload(ctx, testimonialID, image)
	if err != nil {
		s.logger.Warn("testimonial image attach failed",
			"testimonial_id", testimonialID,
			"filename", image.Filename,
			"error", err,
		)
		return "", true
	}
	return url, false
}

// discardImage removes an uploaded image that ended up unreferenced.
// Failures only leave an orphaned object behind, so they are logged.
func (s *testimonialService) discardImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.images.Remove(ctx, url); err != nil {
		s.logger.Warn("failed to remove testimonial image", "url", url, "error", err)
	}
}

// =============================================================================
// Queries
// =============================================================================

func (s *testimonialService) Get(ctx context.Context, testimonialID uuid.UUID) (*domain.Testimonial, error) {
	const op = "testimonial.get"

	t, err := s.testimonials.GetTestimonial(ctx, testimonialID)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonTestimonialNotFound, "failed to get testimonial")
	}
	return t, nil
}

func (s *testimonialService) GetForAccount(ctx context.Context, accountID, testimonialID uuid.UUID) (*domain.Testimonial, error) {
	const op = "testimonial.get_for_account"

	t, err := s.testimonials.GetTestimonialForAccount(ctx, testimonialID, accountID)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonTestimonialNotFound, "failed to get testimonial")
	}
	return t, nil
}

func (s *testimonialService) List(ctx context.Context, params domain.ListTestimonialsParams) (*domain.Page[domain.Testimonial], error) {
	const op = "testimonial.list"

	params.Page = params.Page.Normalize()
	if params.Status != nil && !params.Status.IsValid() {
		return nil, domain.Invalid(op, "unknown testimonial status")
	}

	if params.LandingPageID != nil {
		if _, err := s.pages.GetLandingPageForAccount(ctx, *params.LandingPageID, params.AccountID); err != nil {
			return nil, storeErr(err, op, domain.ReasonLandingPageNotFound, "failed to get landing page")
		}
	}

	items, total, err := s.testimonials.ListTestimonials(ctx, params)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list testimonials")
	}

	return &domain.Page[domain.Testimonial]{
		Results: items,
		Total:   total,
		Limit:   params.Page.Limit,
		Offset:  params.Page.Offset,
	}, nil
}

func (s *testimonialService) Delete(ctx context.Context, accountID, testimonialID uuid.UUID) error {
	const op = "testimonial.delete"

	n, err := s.testimonials.DeleteTestimonials(ctx, accountID, []uuid.UUID{testimonialID})
	if err != nil {
		return domain.Internal(err, op, "failed to delete testimonial")
	}
	if n == 0 {
		return domain.NotFound(op, domain.ReasonTestimonialNotFound)
	}

	s.logger.Info("testimonial deleted", "testimonial_id", testimonialID, "account_id", accountID)
	return nil
}

func (s *testimonialService) DeleteMany(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (int64, error) {
	const op = "testimonial.delete_many"

	if len(ids) == 0 {
		return 0, domain.Invalid(op, "at least one id is required")
	}

	n, err := s.testimonials.DeleteTestimonials(ctx, accountID, ids)
	if err != nil {
		return 0, domain.Internal(err, op, "failed to delete testimonials")
	}

	s.logger.Info("testimonials deleted", "account_id", accountID, "requested", len(ids), "deleted", n)
	return n, nil
}
