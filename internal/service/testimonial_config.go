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

// TestimonialConfigService manages an account's testimonial configs.
// The config ceiling is the same on every tier.
type TestimonialConfigService interface {
	// Create returns domain.ECONFLICT (TESTIMONIAL_CONFIG_LIMIT_REACHED) at the ceiling.
	Create(ctx context.Context, params domain.TestimonialConfigParams) (*domain.TestimonialConfig, error)

	Get(ctx context.Context, accountID, configID uuid.UUID) (*domain.TestimonialConfig, error)
	List(ctx context.Context, accountID uuid.UUID, page domain.PageParams) (*domain.Page[domain.TestimonialConfig], error)

	// Update replaces the config's settings. Every landing page referencing it
	// sees the change.
	Update(ctx context.Context, configID uuid.UUID, params domain.TestimonialConfigParams) (*domain.TestimonialConfig, error)

	// Delete returns domain.ECONFLICT (TESTIMONIAL_CONFIG_IN_USE) while a
	// landing page references the config.
	Delete(ctx context.Context, accountID, configID uuid.UUID) error
}

type testimonialConfigService struct {
	configs TestimonialConfigStore
	quota   QuotaService
	logger  *slog.Logger
}

// NewTestimonialConfigService creates a new TestimonialConfigService.
func NewTestimonialConfigService(configs TestimonialConfigStore, quota QuotaService, logger *slog.Logger) TestimonialConfigService {
	return &testimonialConfigService{
		configs: configs,
		quota:   quota,
		logger:  logger,
	}
}

func (s *testimonialConfigService) Create(ctx context.Context, params domain.TestimonialConfigParams) (*domain.TestimonialConfig, error) {
	const op = "testimonial_config.create"

	params.Name = strings.TrimSpace(params.Name)
	if err := params.Validate(op); err != nil {
		return nil, err
	}

	// Flat ceiling; the tier argument does not matter.
	limit := s.quota.Limit(domain.TierFree, domain.ResourceTestimonialConfig)

	cfg, err := s.configs.CreateTestimonialConfigWithinQuota(ctx, params, limit)
	if errors.Is(err, repository.ErrLimitReached) {
		return nil, s.quota.Rejected(op, domain.ResourceTestimonialConfig, "", params.AccountID, limit)
	}
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonAccountNotFound, "failed to create testimonial config")
	}

	s.logger.Info("testimonial config created", "testimonial_config_id", cfg.ID, "account_id", params.AccountID)
	return cfg, nil
}

func (s *testimonialConfigService) Get(ctx context.Context, accountID, configID uuid.UUID) (*domain.TestimonialConfig, error) {
	const op = "testimonial_config.get"

	cfg, err := s.configs.GetTestimonialConfigForAccount(ctx, configID, accountID)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonTestimonialConfigNotFound, "failed to get testimonial config")
	}
	return cfg, nil
}

func (s *testimonialConfigService) List(ctx context.Context, accountID uuid.UUID, page domain.PageParams) (*domain.Page[domain.TestimonialConfig], error) {
	const op = "testimonial_config.list"

	page = page.Normalize()
	items, total, err := s.configs.ListTestimonialConfigs(ctx, accountID, page)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list testimonial configs")
	}

	return &domain.Page[domain.TestimonialConfig]{
		Results: items,
		Total:   total,
		Limit:   page.Limit,
		Offset:  page.Offset,
	}, nil
}

func (s *testimonialConfigService) Update(ctx context.Context, configID uuid.UUID, params domain.TestimonialConfigParams) (*domain.TestimonialConfig, error) {
	const op = "testimonial_config.update"

	params.Name = strings.TrimSpace(params.Name)
	if err := params.Validate(op); err != nil {
		return nil, err
	}

	cfg, err := s.configs.UpdateTestimonialConfig(ctx, configID, params)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonTestimonialConfigNotFound, "failed to update testimonial config")
	}

	s.logger.Info("testimonial config updated", "testimonial_config_id", configID, "account_id", params.AccountID)
	return cfg, nil
}

func (s *testimonialConfigService) Delete(ctx context.Context, accountID, configID uuid.UUID) error {
	const op = "testimonial_config.delete"

	err := s.configs.DeleteTestimonialConfig(ctx, configID, accountID)
	switch {
	case err == nil:
	case repository.IsForeignKeyViolation(err):
		return domain.Conflict(op, domain.ReasonTestimonialConfigInUse)
	default:
		return storeErr(err, op, domain.ReasonTestimonialConfigNotFound, "failed to delete testimonial config")
	}

	s.logger.Info("testimonial config deleted", "testimonial_config_id", configID, "account_id", accountID)
	return nil
}
