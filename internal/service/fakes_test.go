package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DukeRupert/vouch/internal/auth"
	"github.com/DukeRupert/vouch/internal/billing"
	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var testPrices = billing.PriceConfig{
	FreePriceID:    "price_free",
	PremiumPriceID: "price_premium",
}

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// Clock
// =============================================================================

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: testEpoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// =============================================================================
// Record store
// =============================================================================

// memStore is an in-memory stand-in for *repository.Store. It mirrors the
// store's error contract: sql.ErrNoRows for missing rows and the repository
// sentinels for guarded writes.
type memStore struct {
	mu sync.Mutex

	accounts     map[uuid.UUID]domain.Account
	configs      map[uuid.UUID]domain.TestimonialConfig
	pages        map[uuid.UUID]domain.LandingPage
	testimonials map[uuid.UUID]domain.Testimonial
	requests     map[string]domain.VerificationRequest

	clock  func() time.Time
	writes int

	// Forced failures
	countErr error
}

var _ interface {
	AccountStore
	CounterStore
	TestimonialConfigStore
	LandingPageStore
	TestimonialStore
	VerificationStore
} = (*memStore)(nil)

func newMemStore(clock func() time.Time) *memStore {
	return &memStore{
		accounts:     make(map[uuid.UUID]domain.Account),
		configs:      make(map[uuid.UUID]domain.TestimonialConfig),
		pages:        make(map[uuid.UUID]domain.LandingPage),
		testimonials: make(map[uuid.UUID]domain.Testimonial),
		requests:     make(map[string]domain.VerificationRequest),
		clock:        clock,
	}
}

func requestKey(identifier string, typ domain.VerificationType) string {
	return identifier + "|" + string(typ)
}

func (m *memStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// --- seeding helpers ---

func (m *memStore) seedAccount(t *testing.T, billingCache domain.BillingCache) domain.Account {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	verified := m.clock()
	a := domain.Account{
		ID:              uuid.New(),
		Email:           strings.ToLower(uuid.NewString()[:8] + "@example.com"),
		Name:            "Owner",
		Billing:         billingCache,
		EmailVerifiedAt: &verified,
		CreatedAt:       m.clock(),
		UpdatedAt:       m.clock(),
	}
	m.accounts[a.ID] = a
	return a
}

func (m *memStore) seedConfig(t *testing.T, accountID uuid.UUID, expirationDays int) domain.TestimonialConfig {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	c := domain.TestimonialConfig{
		ID:               uuid.New(),
		AccountID:        accountID,
		Name:             "Default",
		Format:           domain.TestimonialFormatTextImage,
		TitleCharLimit:   20,
		MessageCharLimit: 200,
		ExpirationDays:   expirationDays,
		CreatedAt:        m.clock(),
	}
	m.configs[c.ID] = c
	return c
}

func (m *memStore) seedPage(t *testing.T, accountID, configID uuid.UUID) domain.LandingPage {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	p := domain.LandingPage{
		ID:                  uuid.New(),
		AccountID:           accountID,
		TestimonialConfigID: configID,
		Name:                "Page",
		Link:                "https://example.com",
		CreatedAt:           m.clock(),
	}
	m.pages[p.ID] = p
	return p
}

func (m *memStore) seedTestimonial(t *testing.T, page domain.LandingPage, status domain.TestimonialStatus) domain.Testimonial {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	tm := domain.Testimonial{
		ID:            uuid.New(),
		LandingPageID: page.ID,
		AccountID:     page.AccountID,
		Status:        status,
		CreatedAt:     m.clock(),
	}
	m.testimonials[tm.ID] = tm
	return tm
}

// --- AccountStore ---

func (m *memStore) CreateAccount(ctx context.Context, email, passwordHash, name, companyName string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			return nil, repository.ErrDuplicate
		}
	}
	a := domain.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CompanyName:  companyName,
		CreatedAt:    m.clock(),
		UpdatedAt:    m.clock(),
	}
	m.accounts[a.ID] = a
	m.writes++
	return &a, nil
}

func (m *memStore) GetAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (m *memStore) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) FindAccountByBilling(ctx context.Context, customerID, subscriptionID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var bySub *domain.Account
	for _, a := range m.accounts {
		if customerID != "" && a.Billing.CustomerID == customerID {
			return &a, nil
		}
		if subscriptionID != "" && a.Billing.SubscriptionID == subscriptionID {
			a := a
			bySub = &a
		}
	}
	if bySub != nil {
		return bySub, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) UpdateAccountProfile(ctx context.Context, params domain.ProfileUpdateParams) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[params.AccountID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	a.Name = params.Name
	a.CompanyName = params.CompanyName
	a.Image = params.Image
	a.UpdatedAt = m.clock()
	m.accounts[a.ID] = a
	m.writes++
	return &a, nil
}

func (m *memStore) UpdateAccountPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.PasswordHash = passwordHash
	m.accounts[id] = a
	m.writes++
	return nil
}

func (m *memStore) ApplyBillingSync(ctx context.Context, params domain.BillingSyncParams) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[params.AccountID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	a.Billing = domain.BillingCache{
		CustomerID:         params.CustomerID,
		SubscriptionID:     params.SubscriptionID,
		PriceID:            params.PriceID,
		SubscriptionStatus: params.SubscriptionStatus,
	}
	m.accounts[a.ID] = a
	m.writes++
	return &a, nil
}

func (m *memStore) MarkEmailVerified(ctx context.Context, params domain.BillingSyncParams, identifier string, verifiedAt time.Time) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[params.AccountID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if a.EmailVerifiedAt != nil {
		return nil, repository.ErrAlreadyVerified
	}
	a.Billing = domain.BillingCache{
		CustomerID:         params.CustomerID,
		SubscriptionID:     params.SubscriptionID,
		PriceID:            params.PriceID,
		SubscriptionStatus: params.SubscriptionStatus,
	}
	a.EmailVerifiedAt = &verifiedAt
	m.accounts[a.ID] = a
	delete(m.requests, requestKey(identifier, domain.VerificationEmail))
	m.writes++
	return &a, nil
}

// --- CounterStore ---

func (m *memStore) CountLandingPages(ctx context.Context, accountID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.countPagesLocked(accountID), nil
}

func (m *memStore) countPagesLocked(accountID uuid.UUID) int64 {
	var n int64
	for _, p := range m.pages {
		if p.AccountID == accountID {
			n++
		}
	}
	return n
}

func (m *memStore) CountTestimonialConfigs(ctx context.Context, accountID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.countConfigsLocked(accountID), nil
}

func (m *memStore) countConfigsLocked(accountID uuid.UUID) int64 {
	var n int64
	for _, c := range m.configs {
		if c.AccountID == accountID {
			n++
		}
	}
	return n
}

func (m *memStore) CountTestimonials(ctx context.Context, landingPageID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.countTestimonialsLocked(landingPageID), nil
}

func (m *memStore) countTestimonialsLocked(landingPageID uuid.UUID) int64 {
	var n int64
	for _, t := range m.testimonials {
		if t.LandingPageID == landingPageID {
			n++
		}
	}
	return n
}

func (m *memStore) CountTestimonialsByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, t := range m.testimonials {
		if t.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

// --- TestimonialConfigStore ---

func (m *memStore) CreateTestimonialConfigWithinQuota(ctx context.Context, params domain.TestimonialConfigParams, limit int64) (*domain.TestimonialConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[params.AccountID]; !ok {
		return nil, sql.ErrNoRows
	}
	if !domain.Allows(m.countConfigsLocked(params.AccountID), limit) {
		return nil, repository.ErrLimitReached
	}
	c := domain.TestimonialConfig{
		ID:               uuid.New(),
		AccountID:        params.AccountID,
		Name:             params.Name,
		Format:           params.Format,
		TitleCharLimit:   params.TitleCharLimit,
		MessageCharLimit: params.MessageCharLimit,
		ExpirationDays:   params.ExpirationDays,
		CreatedAt:        m.clock(),
		UpdatedAt:        m.clock(),
	}
	m.configs[c.ID] = c
	m.writes++
	return &c, nil
}

func (m *memStore) GetTestimonialConfig(ctx context.Context, id uuid.UUID) (*domain.TestimonialConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.configs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (m *memStore) GetTestimonialConfigForAccount(ctx context.Context, id, accountID uuid.UUID) (*domain.TestimonialConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.configs[id]
	if !ok || c.AccountID != accountID {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (m *memStore) ListTestimonialConfigs(ctx context.Context, accountID uuid.UUID, page domain.PageParams) ([]domain.TestimonialConfig, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.TestimonialConfig
	for _, c := range m.configs {
		if c.AccountID == accountID {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return window(all, page), int64(len(all)), nil
}

func (m *memStore) UpdateTestimonialConfig(ctx context.Context, id uuid.UUID, params domain.TestimonialConfigParams) (*domain.TestimonialConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.configs[id]
	if !ok || c.AccountID != params.AccountID {
		return nil, sql.ErrNoRows
	}
	c.Name = params.Name
	c.Format = params.Format
	c.TitleCharLimit = params.TitleCharLimit
	c.MessageCharLimit = params.MessageCharLimit
	c.ExpirationDays = params.ExpirationDays
	c.UpdatedAt = m.clock()
	m.configs[id] = c
	m.writes++
	return &c, nil
}

// errForeignKey is what Postgres reports while a landing page references the config.
var errForeignKey = &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}

func (m *memStore) DeleteTestimonialConfig(ctx context.Context, id, accountID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.configs[id]
	if !ok || c.AccountID != accountID {
		return sql.ErrNoRows
	}
	for _, p := range m.pages {
		if p.TestimonialConfigID == id {
			return errForeignKey
		}
	}
	delete(m.configs, id)
	m.writes++
	return nil
}

// --- LandingPageStore ---

func (m *memStore) CreateLandingPageWithinQuota(ctx context.Context, params domain.CreateLandingPageParams, limit int64) (*domain.LandingPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[params.AccountID]; !ok {
		return nil, sql.ErrNoRows
	}
	if !domain.Allows(m.countPagesLocked(params.AccountID), limit) {
		return nil, repository.ErrLimitReached
	}
	c, ok := m.configs[params.TestimonialConfigID]
	if !ok || c.AccountID != params.AccountID {
		return nil, repository.ErrConfigNotOwned
	}
	p := domain.LandingPage{
		ID:                  uuid.New(),
		AccountID:           params.AccountID,
		TestimonialConfigID: params.TestimonialConfigID,
		Name:                params.Name,
		Link:                params.Link,
		CreatedAt:           m.clock(),
		UpdatedAt:           m.clock(),
	}
	m.pages[p.ID] = p
	m.writes++
	return &p, nil
}

func (m *memStore) GetLandingPage(ctx context.Context, id uuid.UUID) (*domain.LandingPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pages[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (m *memStore) GetLandingPageForAccount(ctx context.Context, id, accountID uuid.UUID) (*domain.LandingPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pages[id]
	if !ok || p.AccountID != accountID {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (m *memStore) ListLandingPages(ctx context.Context, accountID uuid.UUID, page domain.PageParams) ([]domain.LandingPage, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.LandingPage
	for _, p := range m.pages {
		if p.AccountID == accountID {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return window(all, page), int64(len(all)), nil
}

func (m *memStore) DeleteLandingPages(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		p, ok := m.pages[id]
		if !ok || p.AccountID != accountID {
			continue
		}
		delete(m.pages, id)
		for tid, t := range m.testimonials {
			if t.LandingPageID == id {
				delete(m.testimonials, tid)
			}
		}
		n++
	}
	if n > 0 {
		m.writes++
	}
	return n, nil
}

// --- TestimonialStore ---

func (m *memStore) CreateTestimonialWithinQuota(ctx context.Context, landingPageID uuid.UUID, limit int64) (*domain.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pages[landingPageID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if !domain.Allows(m.countTestimonialsLocked(landingPageID), limit) {
		return nil, repository.ErrLimitReached
	}
	t := domain.Testimonial{
		ID:            uuid.New(),
		LandingPageID: landingPageID,
		AccountID:     p.AccountID,
		Status:        domain.TestimonialStatusPending,
		CreatedAt:     m.clock(),
		UpdatedAt:     m.clock(),
	}
	m.testimonials[t.ID] = t
	m.writes++
	return &t, nil
}

func (m *memStore) GetTestimonial(ctx context.Context, id uuid.UUID) (*domain.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.testimonials[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (m *memStore) GetTestimonialForAccount(ctx context.Context, id, accountID uuid.UUID) (*domain.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.testimonials[id]
	if !ok || t.AccountID != accountID {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (m *memStore) CompleteTestimonial(ctx context.Context, params repository.CompleteParams) (*domain.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.testimonials[params.ID]
	if !ok || !t.IsPending() {
		return nil, repository.ErrNotPending
	}
	t.Status = params.Status
	t.CustomerName = params.Submission.CustomerName
	t.Title = params.Submission.Title
	t.Message = params.Submission.Message
	t.Stars = params.Submission.Stars
	t.Image = params.Image
	t.UpdatedAt = m.clock()
	m.testimonials[t.ID] = t
	m.writes++
	return &t, nil
}

func (m *memStore) UpdateTestimonial(ctx context.Context, id, accountID uuid.UUID, u domain.TestimonialUpdate, image *string) (*domain.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.testimonials[id]
	if !ok || t.AccountID != accountID {
		return nil, sql.ErrNoRows
	}
	if u.CustomerName != nil {
		t.CustomerName = *u.CustomerName
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Message != nil {
		t.Message = *u.Message
	}
	if u.Stars != nil {
		t.Stars = *u.Stars
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if image != nil {
		t.Image = *image
	}
	t.UpdatedAt = m.clock()
	m.testimonials[id] = t
	m.writes++
	return &t, nil
}

func (m *memStore) ListTestimonials(ctx context.Context, params domain.ListTestimonialsParams) ([]domain.Testimonial, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.Testimonial
	for _, t := range m.testimonials {
		switch {
		case t.AccountID != params.AccountID:
		case params.LandingPageID != nil && t.LandingPageID != *params.LandingPageID:
		case params.Status != nil && t.Status != *params.Status:
		case params.Stars != nil && t.Stars != *params.Stars:
		case params.CustomerName != "" && !strings.Contains(strings.ToLower(t.CustomerName), strings.ToLower(params.CustomerName)):
		default:
			all = append(all, t)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	return window(all, params.Page), int64(len(all)), nil
}

func (m *memStore) DeleteTestimonials(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		t, ok := m.testimonials[id]
		if !ok || t.AccountID != accountID {
			continue
		}
		delete(m.testimonials, id)
		n++
	}
	if n > 0 {
		m.writes++
	}
	return n, nil
}

// --- VerificationStore ---

func (m *memStore) GetVerificationRequest(ctx context.Context, identifier string, typ domain.VerificationType) (*domain.VerificationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[requestKey(identifier, typ)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (m *memStore) IssueVerificationRequest(ctx context.Context, req domain.VerificationRequest, now time.Time) (*domain.VerificationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := requestKey(req.Identifier, req.Type)
	if existing, ok := m.requests[key]; ok && !existing.IsExpiredAt(now) {
		return nil, repository.ErrVerificationLive
	}
	req.CreatedAt = now
	m.requests[key] = req
	m.writes++
	return &req, nil
}

func (m *memStore) DeleteVerificationRequest(ctx context.Context, identifier string, typ domain.VerificationType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.requests, requestKey(identifier, typ))
	m.writes++
	return nil
}

func window[T any](items []T, page domain.PageParams) []T {
	start := int(page.Offset)
	if start > len(items) {
		start = len(items)
	}
	end := start + int(page.Limit)
	if page.Limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// =============================================================================
// Billing provider
// =============================================================================

type fakeProvider struct {
	mu sync.Mutex

	customers     map[string]billing.Customer
	subscriptions map[string]billing.Subscription
	checkoutURL   string

	// ParseWebhook returns event and parseErr as configured.
	event    *billing.Event
	parseErr error

	getSubErr error
	calls     []string
}

var _ billing.Provider = (*fakeProvider)(nil)

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		customers:     make(map[string]billing.Customer),
		subscriptions: make(map[string]billing.Subscription),
		checkoutURL:   "https://checkout.example.com/session",
	}
}

func (p *fakeProvider) record(call string) {
	p.calls = append(p.calls, call)
}

func (p *fakeProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakeProvider) addSubscription(sub billing.Subscription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscriptions[sub.ID] = sub
}

func (p *fakeProvider) FindCustomerByEmail(ctx context.Context, email string) (*billing.Customer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("FindCustomerByEmail")
	for _, c := range p.customers {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, billing.ErrNotFound
}

func (p *fakeProvider) CreateCustomer(ctx context.Context, email, name string) (*billing.Customer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("CreateCustomer")
	c := billing.Customer{ID: "cus_" + uuid.NewString()[:8], Email: email}
	p.customers[c.ID] = c
	return &c, nil
}

func (p *fakeProvider) ListSubscriptions(ctx context.Context, customerID, status string, limit int64) ([]billing.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("ListSubscriptions")
	var out []billing.Subscription
	for _, s := range p.subscriptions {
		if s.CustomerID != customerID {
			continue
		}
		if status != "" && string(s.Status) != status {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (p *fakeProvider) CreateSubscription(ctx context.Context, params billing.CreateSubscriptionParams) (*billing.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("CreateSubscription")
	status := domain.SubscriptionStatusActive
	if !params.StartAt.IsZero() {
		status = domain.SubscriptionStatusTrialing
	}
	s := billing.Subscription{
		ID:               "sub_" + uuid.NewString()[:8],
		CustomerID:       params.CustomerID,
		PriceID:          params.PriceID,
		Status:           status,
		CurrentPeriodEnd: testEpoch.Add(30 * 24 * time.Hour),
	}
	p.subscriptions[s.ID] = s
	return &s, nil
}

func (p *fakeProvider) GetSubscription(ctx context.Context, subscriptionID string) (*billing.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("GetSubscription")
	if p.getSubErr != nil {
		return nil, p.getSubErr
	}
	s, ok := p.subscriptions[subscriptionID]
	if !ok {
		return nil, billing.ErrNotFound
	}
	return &s, nil
}

func (p *fakeProvider) ScheduleCancellation(ctx context.Context, subscriptionID string) (*billing.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("ScheduleCancellation")
	s, ok := p.subscriptions[subscriptionID]
	if !ok {
		return nil, billing.ErrNotFound
	}
	s.CancelAtPeriodEnd = true
	p.subscriptions[subscriptionID] = s
	return &s, nil
}

func (p *fakeProvider) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("CreateCheckoutSession")
	return p.checkoutURL, nil
}

func (p *fakeProvider) ParseWebhook(payload []byte, signature string) (*billing.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("ParseWebhook")
	if p.parseErr != nil {
		return nil, p.parseErr
	}
	return p.event, nil
}

// =============================================================================
// Email queue and images
// =============================================================================

type sentEmail struct {
	To, Subject, Body string
}

type fakeEmailQueue struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (q *fakeEmailQueue) Enqueue(ctx context.Context, to, subject, body string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (q *fakeEmailQueue) Sent() []sentEmail {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]sentEmail(nil), q.sent...)
}

type fakeUploader struct {
	url     string
	err     error
	calls   int
	removed []string
}

func (u *fakeUploader) Remove(ctx context.Context, url string) error {
	u.removed = append(u.removed, url)
	return nil
}

func (u *fakeUploader) Upload(ctx context.Context, testimonialID uuid.UUID, file *domain.ImageFile) (string, error) {
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

// =============================================================================
// Wiring
// =============================================================================

// harness wires every service over shared fakes.
type harness struct {
	clock    *fakeClock
	store    *memStore
	provider *fakeProvider
	emails   *fakeEmailQueue
	grants   *auth.Signer

	quota        QuotaService
	entitlement  EntitlementResolver
	billing      BillingService
	verification VerificationService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:    newFakeClock(),
		provider: newFakeProvider(),
		emails:   &fakeEmailQueue{},
	}
	h.store = newMemStore(h.clock.Now)
	h.grants = auth.NewSigner("grant-secret", 10*time.Minute, h.clock.Now)

	logger := discardLogger()
	h.quota = NewQuotaService(domain.DefaultQuotaPolicy(), h.store, logger)
	h.entitlement = NewEntitlementResolver(h.store, h.provider, testPrices, h.clock.Now, logger)
	h.billing = NewBillingService(h.store, h.provider, h.entitlement, testPrices, "https://app.example.com/", logger)
	h.verification = NewVerificationService(h.store, h.store, h.billing, h.emails, h.grants, h.clock.Now, logger)
	return h
}

// seedAccountOnPrice creates a verified account whose cached and provider
// subscription both carry priceID.
func (h *harness) seedAccountOnPrice(t *testing.T, priceID string) domain.Account {
	t.Helper()
	sub := billing.Subscription{
		ID:               "sub_" + uuid.NewString()[:8],
		CustomerID:       "cus_" + uuid.NewString()[:8],
		PriceID:          priceID,
		Status:           domain.SubscriptionStatusActive,
		CurrentPeriodEnd: h.clock.Now().Add(10 * 24 * time.Hour),
	}
	h.provider.addSubscription(sub)
	return h.store.seedAccount(t, domain.BillingCache{
		CustomerID:         sub.CustomerID,
		SubscriptionID:     sub.ID,
		PriceID:            priceID,
		SubscriptionStatus: sub.Status,
	})
}
