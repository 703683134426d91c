package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/google/uuid"
)

// Store composes Queries into the transactional operations the services need
// and converts rows into domain types. Not-found conditions surface as
// sql.ErrNoRows; the sentinel errors in this package mark the rest.
type Store struct {
	db *sql.DB
	q  *Queries
}

// NewStore creates a Store over db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: New(db)}
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(s.q.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// =============================================================================
// Accounts
// =============================================================================

func (s *Store) CreateAccount(ctx context.Context, email, passwordHash, name, companyName string) (*domain.Account, error) {
	row, err := s.q.CreateAccount(ctx, CreateAccountParams{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CompanyName:  domain.ToNullString(companyName),
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return accountToDomain(row), nil
}

func (s *Store) GetAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row, err := s.q.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return accountToDomain(row), nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row, err := s.q.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return accountToDomain(row), nil
}

func (s *Store) FindAccountByBilling(ctx context.Context, customerID, subscriptionID string) (*domain.Account, error) {
	row, err := s.q.GetAccountByStripeInfo(ctx, GetAccountByStripeInfoParams{
		CustomerID:     customerID,
		SubscriptionID: subscriptionID,
	})
	if err != nil {
		return nil, err
	}
	return accountToDomain(row), nil
}

func (s *Store) UpdateAccountProfile(ctx context.Context, params domain.ProfileUpdateParams) (*domain.Account, error) {
	row, err := s.q.UpdateAccountProfile(ctx, UpdateAccountProfileParams{
		ID:          params.AccountID,
		Name:        params.Name,
		CompanyName: domain.ToNullString(params.CompanyName),
		Image:       domain.ToNullString(params.Image),
	})
	if err != nil {
		return nil, err
	}
	return accountToDomain(row), nil
}

func (s *Store) UpdateAccountPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return s.q.UpdateAccountPassword(ctx, UpdateAccountPasswordParams{ID: id, PasswordHash: passwordHash})
}

// ApplyBillingSync overwrites the billing cache with the account row locked.
func (s *Store) ApplyBillingSync(ctx context.Context, params domain.BillingSyncParams) (*domain.Account, error) {
	var out *domain.Account
	err := s.withTx(ctx, func(q *Queries) error {
		if _, err := q.GetAccountByIDForUpdate(ctx, params.AccountID); err != nil {
			return err
		}
		row, err := q.UpdateAccountBilling(ctx, billingParams(params))
		if err != nil {
			return err
		}
		out = accountToDomain(row)
		return nil
	})
	return out, err
}

// MarkEmailVerified writes the provisioned billing cache and the verification
// timestamp together, then deletes the consumed verification request. Returns
// ErrAlreadyVerified if another request verified the account first.
func (s *Store) MarkEmailVerified(ctx context.Context, params domain.BillingSyncParams, identifier string, verifiedAt time.Time) (*domain.Account, error) {
	var out *domain.Account
	err := s.withTx(ctx, func(q *Queries) error {
		current, err := q.GetAccountByIDForUpdate(ctx, params.AccountID)
		if err != nil {
			return err
		}
		if current.EmailVerifiedAt.Valid {
			return ErrAlreadyVerified
		}
		row, err := q.UpdateAccountBilling(ctx, billingParams(params))
		if err != nil {
			return err
		}
		if err := q.SetAccountEmailVerified(ctx, SetAccountEmailVerifiedParams{
			ID:              params.AccountID,
			EmailVerifiedAt: sql.NullTime{Time: verifiedAt, Valid: true},
		}); err != nil {
			return err
		}
		if err := q.DeleteVerificationRequest(ctx, DeleteVerificationRequestParams{
			Identifier: identifier,
			Type:       string(domain.VerificationEmail),
		}); err != nil {
			return err
		}
		out = accountToDomain(row)
		out.EmailVerifiedAt = &verifiedAt
		return nil
	})
	return out, err
}

func billingParams(p domain.BillingSyncParams) UpdateAccountBillingParams {
	return UpdateAccountBillingParams{
		ID:                       p.AccountID,
		StripeCustomerID:         domain.ToNullString(p.CustomerID),
		StripeSubscriptionID:     domain.ToNullString(p.SubscriptionID),
		StripePriceID:            domain.ToNullString(p.PriceID),
		StripeSubscriptionStatus: domain.ToNullString(string(p.SubscriptionStatus)),
	}
}

// =============================================================================
// Counts
// =============================================================================

func (s *Store) CountLandingPages(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return s.q.CountLandingPagesByAccount(ctx, accountID)
}

func (s *Store) CountTestimonialConfigs(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return s.q.CountTestimonialConfigsByAccount(ctx, accountID)
}

func (s *Store) CountTestimonials(ctx context.Context, landingPageID uuid.UUID) (int64, error) {
	return s.q.CountTestimonialsByLandingPage(ctx, landingPageID)
}

func (s *Store) CountTestimonialsByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return s.q.CountTestimonialsByAccount(ctx, accountID)
}

// =============================================================================
// Testimonial configs
// =============================================================================

// CreateTestimonialConfigWithinQuota serializes on the account row and inserts
// only while the account holds fewer than limit configs.
func (s *Store) CreateTestimonialConfigWithinQuota(ctx context.Context, params domain.TestimonialConfigParams, limit int64) (*domain.TestimonialConfig, error) {
	var out *domain.TestimonialConfig
	err := s.withTx(ctx, func(q *Queries) error {
		if _, err := q.GetAccountByIDForUpdate(ctx, params.AccountID); err != nil {
			return err
		}
		row, err := q.CreateTestimonialConfigWithinLimit(ctx, CreateTestimonialConfigParams{
			AccountID:        params.AccountID,
			Name:             params.Name,
			Format:           string(params.Format),
			TitleCharLimit:   int32(params.TitleCharLimit),
			MessageCharLimit: int32(params.MessageCharLimit),
			ExpirationLimit:  int32(params.ExpirationDays),
			Limit:            limit,
		})
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLimitReached
		}
		if err != nil {
			return err
		}
		out = testimonialConfigToDomain(row)
		return nil
	})
	return out, err
}

func (s *Store) GetTestimonialConfig(ctx context.Context, id uuid.UUID) (*domain.TestimonialConfig, error) {
	row, err := s.q.GetTestimonialConfig(ctx, id)
	if err != nil {
		return nil, err
	}
	return testimonialConfigToDomain(row), nil
}

func (s *Store) GetTestimonialConfigForAccount(ctx context.Context, id, accountID uuid.UUID) (*domain.TestimonialConfig, error) {
	row, err := s.q.GetTestimonialConfigByIDAndAccount(ctx, GetTestimonialConfigByIDAndAccountParams{ID: id, AccountID: accountID})
	if err != nil {
		return nil, err
	}
	return testimonialConfigToDomain(row), nil
}

func (s *Store) ListTestimonialConfigs(ctx context.Context, accountID uuid.UUID, page domain.PageParams) ([]domain.TestimonialConfig, int64, error) {
	rows, err := s.q.ListTestimonialConfigsByAccount(ctx, ListTestimonialConfigsByAccountParams{
		AccountID: accountID,
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.q.CountTestimonialConfigsByAccount(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.TestimonialConfig, 0, len(rows))
	for _, r := range rows {
		out = append(out, *testimonialConfigToDomain(r))
	}
	return out, total, nil
}

func (s *Store) UpdateTestimonialConfig(ctx context.Context, id uuid.UUID, params domain.TestimonialConfigParams) (*domain.TestimonialConfig, error) {
	row, err := s.q.UpdateTestimonialConfig(ctx, UpdateTestimonialConfigParams{
		ID:               id,
		AccountID:        params.AccountID,
		Name:             params.Name,
		Format:           string(params.Format),
		TitleCharLimit:   int32(params.TitleCharLimit),
		MessageCharLimit: int32(params.MessageCharLimit),
		ExpirationLimit:  int32(params.ExpirationDays),
	})
	if err != nil {
		return nil, err
	}
	return testimonialConfigToDomain(row), nil
}

// DeleteTestimonialConfig returns sql.ErrNoRows when nothing matched and the
// raw foreign key error while a landing page still references the config.
func (s *Store) DeleteTestimonialConfig(ctx context.Context, id, accountID uuid.UUID) error {
	n, err := s.q.DeleteTestimonialConfig(ctx, DeleteTestimonialConfigParams{ID: id, AccountID: accountID})
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// =============================================================================
// Landing pages
// =============================================================================

// ErrConfigNotOwned is returned when a landing page references a config the
// account does not own.
var ErrConfigNotOwned = errors.New("repository: testimonial config not found for account")

// CreateLandingPageWithinQuota serializes on the account row. The quota is
// checked before the referenced config so a full account always reports the limit.
func (s *Store) CreateLandingPageWithinQuota(ctx context.Context, params domain.CreateLandingPageParams, limit int64) (*domain.LandingPage, error) {
	var out *domain.LandingPage
	err := s.withTx(ctx, func(q *Queries) error {
		if _, err := q.GetAccountByIDForUpdate(ctx, params.AccountID); err != nil {
			return err
		}
		count, err := q.CountLandingPagesByAccount(ctx, params.AccountID)
		if err != nil {
			return err
		}
		if !domain.Allows(count, limit) {
			return ErrLimitReached
		}
		if _, err := q.GetTestimonialConfigByIDAndAccount(ctx, GetTestimonialConfigByIDAndAccountParams{
			ID:        params.TestimonialConfigID,
			AccountID: params.AccountID,
		}); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrConfigNotOwned
			}
			return err
		}
		row, err := q.CreateLandingPageWithinLimit(ctx, CreateLandingPageParams{
			AccountID:           params.AccountID,
			TestimonialConfigID: params.TestimonialConfigID,
			Name:                params.Name,
			Link:                params.Link,
			Limit:               limit,
		})
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLimitReached
		}
		if err != nil {
			return err
		}
		out = landingPageToDomain(row)
		return nil
	})
	return out, err
}

func (s *Store) GetLandingPage(ctx context.Context, id uuid.UUID) (*domain.LandingPage, error) {
	row, err := s.q.GetLandingPage(ctx, id)
	if err != nil {
		return nil, err
	}
	return landingPageToDomain(row), nil
}

func (s *Store) GetLandingPageForAccount(ctx context.Context, id, accountID uuid.UUID) (*domain.LandingPage, error) {
	row, err := s.q.GetLandingPageByIDAndAccount(ctx, GetLandingPageByIDAndAccountParams{ID: id, AccountID: accountID})
	if err != nil {
		return nil, err
	}
	return landingPageToDomain(row), nil
}

func (s *Store) ListLandingPages(ctx context.Context, accountID uuid.UUID, page domain.PageParams) ([]domain.LandingPage, int64, error) {
	rows, err := s.q.ListLandingPagesByAccount(ctx, ListLandingPagesByAccountParams{
		AccountID: accountID,
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.q.CountLandingPagesByAccount(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.LandingPage, 0, len(rows))
	for _, r := range rows {
		out = append(out, *landingPageToDomain(r))
	}
	return out, total, nil
}

func (s *Store) DeleteLandingPages(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (int64, error) {
	return s.q.DeleteLandingPages(ctx, DeleteLandingPagesParams{AccountID: accountID, IDs: uuidStrings(ids)})
}

// =============================================================================
// Testimonials
// =============================================================================

// CreateTestimonialWithinQuota serializes on the landing page row and inserts
// a PENDING testimonial only while the page holds fewer than limit.
func (s *Store) CreateTestimonialWithinQuota(ctx context.Context, landingPageID uuid.UUID, limit int64) (*domain.Testimonial, error) {
	var out *domain.Testimonial
	err := s.withTx(ctx, func(q *Queries) error {
		if _, err := q.GetLandingPageForUpdate(ctx, landingPageID); err != nil {
			return err
		}
		row, err := q.CreateTestimonialWithinLimit(ctx, CreateTestimonialParams{
			LandingPageID: landingPageID,
			Limit:         limit,
		})
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLimitReached
		}
		if err != nil {
			return err
		}
		out = testimonialToDomain(row)
		return nil
	})
	return out, err
}

func (s *Store) GetTestimonial(ctx context.Context, id uuid.UUID) (*domain.Testimonial, error) {
	row, err := s.q.GetTestimonial(ctx, id)
	if err != nil {
		return nil, err
	}
	return testimonialToDomain(row), nil
}

func (s *Store) GetTestimonialForAccount(ctx context.Context, id, accountID uuid.UUID) (*domain.Testimonial, error) {
	row, err := s.q.GetTestimonialByIDAndAccount(ctx, GetTestimonialByIDAndAccountParams{ID: id, AccountID: accountID})
	if err != nil {
		return nil, err
	}
	return testimonialToDomain(row), nil
}

// CompleteParams is the final state written by a completion.
type CompleteParams struct {
	ID         uuid.UUID
	Status     domain.TestimonialStatus
	Submission domain.Submission
	Image      string
}

// CompleteTestimonial writes the submission only if the testimonial is still
// PENDING; otherwise ErrNotPending.
func (s *Store) CompleteTestimonial(ctx context.Context, params CompleteParams) (*domain.Testimonial, error) {
	row, err := s.q.CompleteTestimonial(ctx, CompleteTestimonialParams{
		ID:           params.ID,
		Status:       string(params.Status),
		CustomerName: sql.NullString{String: params.Submission.CustomerName, Valid: true},
		Title:        sql.NullString{String: params.Submission.Title, Valid: true},
		Message:      sql.NullString{String: params.Submission.Message, Valid: true},
		Stars:        sql.NullInt16{Int16: int16(params.Submission.Stars), Valid: true},
		Image:        sql.NullString{String: params.Image, Valid: true},
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotPending
	}
	if err != nil {
		return nil, err
	}
	return testimonialToDomain(row), nil
}

// UpdateTestimonial applies an owner edit. A nil image leaves the stored image alone.
func (s *Store) UpdateTestimonial(ctx context.Context, id, accountID uuid.UUID, u domain.TestimonialUpdate, image *string) (*domain.Testimonial, error) {
	arg := UpdateTestimonialParams{ID: id, AccountID: accountID}
	if u.Status != nil {
		arg.Status = sql.NullString{String: string(*u.Status), Valid: true}
	}
	if u.CustomerName != nil {
		arg.CustomerName = sql.NullString{String: *u.CustomerName, Valid: true}
	}
	if u.Title != nil {
		arg.Title = sql.NullString{String: *u.Title, Valid: true}
	}
	if u.Message != nil {
		arg.Message = sql.NullString{String: *u.Message, Valid: true}
	}
	if u.Stars != nil {
		arg.Stars = sql.NullInt16{Int16: int16(*u.Stars), Valid: true}
	}
	if image != nil {
		arg.Image = sql.NullString{String: *image, Valid: true}
	}
	row, err := s.q.UpdateTestimonial(ctx, arg)
	if err != nil {
		return nil, err
	}
	return testimonialToDomain(row), nil
}

func (s *Store) ListTestimonials(ctx context.Context, params domain.ListTestimonialsParams) ([]domain.Testimonial, int64, error) {
	filter := CountFilteredTestimonialsParams{
		AccountID:    params.AccountID,
		CustomerName: domain.ToNullString(params.CustomerName),
	}
	if params.LandingPageID != nil {
		filter.LandingPageID = uuid.NullUUID{UUID: *params.LandingPageID, Valid: true}
	}
	if params.Status != nil {
		filter.Status = sql.NullString{String: string(*params.Status), Valid: true}
	}
	if params.Stars != nil {
		filter.Stars = sql.NullInt16{Int16: int16(*params.Stars), Valid: true}
	}

	rows, err := s.q.ListTestimonials(ctx, ListTestimonialsParams{
		AccountID:     filter.AccountID,
		LandingPageID: filter.LandingPageID,
		Status:        filter.Status,
		CustomerName:  filter.CustomerName,
		Stars:         filter.Stars,
		Limit:         params.Page.Limit,
		Offset:        params.Page.Offset,
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.q.CountFilteredTestimonials(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.Testimonial, 0, len(rows))
	for _, r := range rows {
		out = append(out, *testimonialToDomain(r))
	}
	return out, total, nil
}

func (s *Store) DeleteTestimonials(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (int64, error) {
	return s.q.DeleteTestimonials(ctx, DeleteTestimonialsParams{AccountID: accountID, IDs: uuidStrings(ids)})
}

// =============================================================================
// Verification requests
// =============================================================================

func (s *Store) GetVerificationRequest(ctx context.Context, identifier string, typ domain.VerificationType) (*domain.VerificationRequest, error) {
	row, err := s.q.GetVerificationRequest(ctx, GetVerificationRequestParams{Identifier: identifier, Type: string(typ)})
	if err != nil {
		return nil, err
	}
	return verificationToDomain(row), nil
}

// IssueVerificationRequest stores req unless a request for the same
// (identifier, type) is still live at now, in which case ErrVerificationLive.
func (s *Store) IssueVerificationRequest(ctx context.Context, req domain.VerificationRequest, now time.Time) (*domain.VerificationRequest, error) {
	row, err := s.q.IssueVerificationRequest(ctx, IssueVerificationRequestParams{
		Identifier: req.Identifier,
		Type:       string(req.Type),
		Token:      req.Token,
		ExpiresAt:  req.ExpiresAt,
		Now:        now,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVerificationLive
	}
	if err != nil {
		return nil, err
	}
	return verificationToDomain(row), nil
}

func (s *Store) DeleteVerificationRequest(ctx context.Context, identifier string, typ domain.VerificationType) error {
	return s.q.DeleteVerificationRequest(ctx, DeleteVerificationRequestParams{Identifier: identifier, Type: string(typ)})
}

// =============================================================================
// Conversion
// =============================================================================

func accountToDomain(r Account) *domain.Account {
	return &domain.Account{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Name:         r.Name,
		CompanyName:  domain.NullStringValue(r.CompanyName),
		Image:        domain.NullStringValue(r.Image),
		Billing: domain.BillingCache{
			CustomerID:         domain.NullStringValue(r.StripeCustomerID),
			SubscriptionID:     domain.NullStringValue(r.StripeSubscriptionID),
			PriceID:            domain.NullStringValue(r.StripePriceID),
			SubscriptionStatus: domain.SubscriptionStatus(domain.NullStringValue(r.StripeSubscriptionStatus)),
		},
		EmailVerifiedAt: domain.NullTimeValue(r.EmailVerifiedAt),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func testimonialConfigToDomain(r TestimonialConfig) *domain.TestimonialConfig {
	return &domain.TestimonialConfig{
		ID:               r.ID,
		AccountID:        r.AccountID,
		Name:             r.Name,
		Format:           domain.TestimonialFormat(r.Format),
		TitleCharLimit:   int(r.TitleCharLimit),
		MessageCharLimit: int(r.MessageCharLimit),
		ExpirationDays:   int(r.ExpirationLimit),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func landingPageToDomain(r LandingPage) *domain.LandingPage {
	return &domain.LandingPage{
		ID:                  r.ID,
		AccountID:           r.AccountID,
		TestimonialConfigID: r.TestimonialConfigID,
		Name:                r.Name,
		Link:                r.Link,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func testimonialToDomain(r Testimonial) *domain.Testimonial {
	return &domain.Testimonial{
		ID:            r.ID,
		LandingPageID: r.LandingPageID,
		AccountID:     r.AccountID,
		Status:        domain.TestimonialStatus(r.Status),
		CustomerName:  domain.NullStringValue(r.CustomerName),
		Title:         domain.NullStringValue(r.Title),
		Message:       domain.NullStringValue(r.Message),
		Stars:         domain.NullInt16Value(r.Stars),
		Image:         domain.NullStringValue(r.Image),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func verificationToDomain(r VerificationRequest) *domain.VerificationRequest {
	return &domain.VerificationRequest{
		Identifier: r.Identifier,
		Type:       domain.VerificationType(r.Type),
		Token:      r.Token,
		ExpiresAt:  r.ExpiresAt,
		CreatedAt:  r.CreatedAt,
	}
}

// =============================================================================
// Jobs
// =============================================================================

func (s *Store) EnqueueJob(ctx context.Context, arg EnqueueJobParams) (Job, error) {
	return s.q.EnqueueJob(ctx, arg)
}

// ClaimJob dequeues the next runnable job and marks it running in one
// transaction. Returns sql.ErrNoRows when the queue is empty.
func (s *Store) ClaimJob(ctx context.Context) (Job, error) {
	var job Job
	err := s.withTx(ctx, func(q *Queries) error {
		var err error
		job, err = q.DequeueJob(ctx)
		if err != nil {
			return err
		}
		if err := q.UpdateJobStarted(ctx, job.ID); err != nil {
			return fmt.Errorf("mark job started: %w", err)
		}
		job.Status = "running"
		job.Attempts++
		return nil
	})
	return job, err
}

func (s *Store) CompleteJob(ctx context.Context, id uuid.UUID) error {
	return s.q.UpdateJobCompleted(ctx, id)
}

func (s *Store) FailJob(ctx context.Context, arg UpdateJobFailedParams) error {
	return s.q.UpdateJobFailed(ctx, arg)
}

func (s *Store) RecoverStaleJobs(ctx context.Context, threshold time.Duration) (int64, error) {
	return s.q.RecoverStaleJobs(ctx, threshold.Seconds())
}

// JobCounts returns the number of jobs per status.
func (s *Store) JobCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := s.q.CountJobsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
