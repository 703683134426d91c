package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/repository"
	"github.com/google/uuid"
)

// LandingPageService manages an account's landing pages.
type LandingPageService interface {
	// Create returns domain.ECONFLICT (LANDING_PAGE_LIMIT_REACHED) at the tier
	// ceiling and domain.ENOTFOUND (TESTIMONIAL_CONFIG_NOT_FOUND) if the
	// referenced config is not the account's.
	Create(ctx context.Context, params domain.CreateLandingPageParams) (*domain.LandingPage, error)

	// Get returns the page with its config populated.
	Get(ctx context.Context, accountID, landingPageID uuid.UUID) (*domain.LandingPage, error)

	List(ctx context.Context, accountID uuid.UUID, page domain.PageParams) (*domain.Page[domain.LandingPage], error)
	Delete(ctx context.Context, accountID, landingPageID uuid.UUID) error
	DeleteMany(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (int64, error)
}

type landingPageService struct {
	pages       LandingPageStore
	configs     TestimonialConfigStore
	entitlement EntitlementResolver
	quota       QuotaService
	logger      *slog.Logger
}

// NewLandingPageService creates a new LandingPageService.
func NewLandingPageService(pages LandingPageStore, configs TestimonialConfigStore, entitlement EntitlementResolver, quota QuotaService, logger *slog.Logger) LandingPageService {
	return &landingPageService{
		pages:       pages,
		configs:     configs,
		entitlement: entitlement,
		quota:       quota,
		logger:      logger,
	}
}

func (s *landingPageService) Create(ctx context.Context, params domain.CreateLandingPageParams) (*domain.LandingPage, error) {
	const op = "landing_page.create"

	params.Name = strings.TrimSpace(params.Name)
	params.Link = strings.TrimSpace(params.Link)
	if err := params.Validate(op); err != nil {
		return nil, err
	}

	ent, err := s.entitlement.CurrentTier(ctx, params.AccountID)
	if err != nil {
		return nil, err
	}
	limit := s.quota.Limit(ent.Tier, domain.ResourceLandingPage)

	page, err := s.pages.CreateLandingPageWithinQuota(ctx, params, limit)
	switch {
	case errors.Is(err, repository.ErrLimitReached):
		return nil, s.quota.Rejected(op, domain.ResourceLandingPage, ent.Tier, params.AccountID, limit)
	case errors.Is(err, repository.ErrConfigNotOwned):
		return nil, domain.NotFound(op, domain.ReasonTestimonialConfigNotFound)
	case err != nil:
		return nil, storeErr(err, op, domain.ReasonAccountNotFound, "failed to create landing page")
	}

	s.logger.Info("landing page created", "landing_page_id", page.ID, "account_id", params.AccountID)
	return page, nil
}

func (s *landingPageService) Get(ctx context.Context, accountID, landingPageID uuid.UUID) (*domain.LandingPage, error) {
	const op = "landing_page.get"

	page, err := s.pages.GetLandingPageForAccount(ctx, landingPageID, accountID)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonLandingPageNotFound, "failed to get landing page")
	}

	cfg, err := s.configs.GetTestimonialConfig(ctx, page.TestimonialConfigID)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonTestimonialConfigNotFound, "failed to get testimonial config")
	}
	page.Config = cfg

	return page, nil
}

func (s *landingPageService) List(ctx context.Context, accountID uuid.UUID, page domain.PageParams) (*domain.Page[domain.LandingPage], error) {
	const op = "landing_page.list"

	page = page.Normalize()
	items, total, err := s.pages.ListLandingPages(ctx, accountID, page)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list landing pages")
	}

	return &domain.Page[domain.LandingPage]{
		Results: items,
		Total:   total,
		Limit:   page.Limit,
		Offset:  page.Offset,
	}, nil
}

func (s *landingPageService) Delete(ctx context.Context, accountID, landingPageID uuid.UUID) error {
	const op = "landing_page.delete"

	n, err := s.pages.DeleteLandingPages(ctx, accountID, []uuid.UUID{landingPageID})
	if err != nil {
		return domain.Internal(err, op, "failed to delete landing page")
	}
	if n == 0 {
		return domain.NotFound(op, domain.ReasonLandingPageNotFound)
	}

	s.logger.Info("landing page deleted", "landing_page_id", landingPageID, "account_id", accountID)
	return nil
}

func (s *landingPageService) DeleteMany(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (int64, error) {
	const op = "landing_page.delete_many"

	if len(ids) == 0 {
		return 0, domain.Invalid(op, "at least one id is required")
	}

	n, err := s.pages.DeleteLandingPages(ctx, accountID, ids)
	if err != nil {
		return 0, domain.Internal(err, op, "failed to delete landing pages")
	}

	s.logger.Info("landing pages deleted", "account_id", accountID, "requested", len(ids), "deleted", n)
	return n, nil
}
