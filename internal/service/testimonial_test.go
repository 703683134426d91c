package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DukeRupert/vouch/internal/ai/mock"
	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testimonialFixture struct {
	*harness
	classifier *mock.Provider
	uploader   *fakeUploader
	svc        TestimonialService

	account domain.Account
	config  domain.TestimonialConfig
	page    domain.LandingPage
}

func newTestimonialFixture(t *testing.T, priceID string) *testimonialFixture {
	t.Helper()
	h := newHarness(t)
	f := &testimonialFixture{
		harness:    h,
		classifier: mock.New(discardLogger()),
		uploader:   &fakeUploader{url: "https://cdn.example.com/image.jpg"},
	}
	f.svc = NewTestimonialService(TestimonialDeps{
		Testimonials: h.store,
		LandingPages: h.store,
		Configs:      h.store,
		Counts:       h.store,
		Entitlement:  h.entitlement,
		Quota:        h.quota,
		Classifier:   f.classifier,
		Images:       f.uploader,
		Clock:        h.clock.Now,
	}, discardLogger())

	f.account = h.seedAccountOnPrice(t, priceID)
	f.config = h.store.seedConfig(t, f.account.ID, 5)
	f.page = h.store.seedPage(t, f.account.ID, f.config.ID)
	return f
}

func validSubmission() domain.Submission {
	return domain.Submission{
		CustomerName: "Dana",
		Title:        "Great",
		Message:      "Loved working with this team",
		Stars:        5,
	}
}

func TestTestimonialService_CreateLink(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)

	link, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TestimonialStatusPending, link.Status)
	assert.Equal(t, f.page.ID, link.LandingPageID)
}

func TestTestimonialService_CreateLinkQuota(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)
	for i := 0; i < 10; i++ {
		_, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
		require.NoError(t, err)
	}

	_, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	assert.Equal(t, domain.ReasonTestimonialLimitReached, domain.ErrorReason(err))

	// The ceiling is per landing page.
	other := f.store.seedPage(t, f.account.ID, f.config.ID)
	_, err = f.svc.CreateLink(t.Context(), f.account.ID, other.ID)
	assert.NoError(t, err)
}

func TestTestimonialService_CreateLinkRequiresOwnership(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)
	stranger := f.store.seedAccount(t, domain.BillingCache{})

	_, err := f.svc.CreateLink(t.Context(), stranger.ID, f.page.ID)
	assert.Equal(t, domain.ReasonLandingPageNotFound, domain.ErrorReason(err))
}

func TestTestimonialService_CreateLinkNeedsEntitlement(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)
	f.provider.getSubErr = errors.New("provider down")

	_, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
	require.Error(t, err)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
}

func TestTestimonialService_CompleteFreeTierSkipsClassifier(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)
	link, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
	require.NoError(t, err)

	sub := validSubmission()
	sub.Message = "Terrible, I want a refund"

	result, err := f.svc.Complete(t.Context(), link.ID, sub, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.TestimonialStatusApproved, result.Testimonial.Status)
	assert.Equal(t, sub.Message, result.Testimonial.Message)
	assert.Zero(t, f.classifier.CallCount())
	assert.False(t, result.ImageAttachFailed)
}

func TestTestimonialService_CompletePremiumTierModerates(t *testing.T) {
	tests := []struct {
		name       string
		positive   bool
		wantStatus domain.TestimonialStatus
	}{
		{"positive is approved", true, domain.TestimonialStatusApproved},
		{"negative is rejected", false, domain.TestimonialStatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestimonialFixture(t, testPrices.PremiumPriceID)
			verdict := tt.positive
			f.classifier.Verdict = &verdict
			link, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
			require.NoError(t, err)

			sub := validSubmission()
			result, err := f.svc.Complete(t.Context(), link.ID, sub, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, result.Testimonial.Status)
			require.Equal(t, 1, f.classifier.CallCount())
			assert.Equal(t, sub.Message, f.classifier.Calls[0])
		})
	}
}

func TestTestimonialService_CompleteClassifierFailure(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.PremiumPriceID)
	f.classifier.Error = errors.New("rate limited")
	link, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
	require.NoError(t, err)

	_, err = f.svc.Complete(t.Context(), link.ID, validSubmission(), nil)
	require.Error(t, err)

	stored, err := f.store.GetTestimonial(t.Context(), link.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPending())
}

func TestTestimonialService_CompleteExpiry(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		wantErr string
	}{
		{"just before deadline", 5*24*time.Hour - time.Minute, ""},
		{"exactly at deadline", 5 * 24 * time.Hour, ""},
		{"one minute past deadline", 5*24*time.Hour + time.Minute, domain.ReasonTestimonialExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestimonialFixture(t, testPrices.FreePriceID)
			link, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
			require.NoError(t, err)

			f.clock.Advance(tt.advance)

			_, err = f.svc.Complete(t.Context(), link.ID, validSubmission(), nil)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
			assert.Equal(t, tt.wantErr, domain.ErrorReason(err))
		})
	}
}

func TestTestimonialService_CompleteTwice(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)
	link, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
	require.NoError(t, err)

	_, err = f.svc.Complete(t.Context(), link.ID, validSubmission(), nil)
	require.NoError(t, err)

	_, err = f.svc.Complete(t.Context(), link.ID, validSubmission(), nil)
	assert.Equal(t, domain.ReasonTestimonialAlreadyCompleted, domain.ErrorReason(err))
}

func TestTestimonialService_CompleteConcurrentOnce(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)
	link, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
	require.NoError(t, err)

	const attempts = 10
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Complete(t.Context(), link.ID, validSubmission(), nil)
		}(i)
	}
	wg.Wait()

	completed := 0
	for _, err := range errs {
		if err == nil {
			completed++
			continue
		}
		assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
		assert.Equal(t, domain.ReasonTestimonialAlreadyCompleted, domain.ErrorReason(err))
	}
	assert.Equal(t, 1, completed)

	stored, err := f.store.GetTestimonial(t.Context(), link.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TestimonialStatusApproved, stored.Status)
}

func TestTestimonialService_CreateLinkConcurrentHoldsQuota(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)

	const attempts = 25
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.Equal(t, domain.ReasonTestimonialLimitReached, domain.ErrorReason(err))
	}
	assert.Equal(t, 10, created)

	n, err := f.store.CountTestimonials(t.Context(), f.page.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
}

func TestTestimonialService_CompleteCharacterLimits(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		message string
		want    string
	}{
		{"message over limit", "ok", string(make([]byte, 201)), domain.ReasonMessageCharLimitExceeded},
		{"title over limit", "this title is far too long", "ok", domain.ReasonTitleCharLimitExceeded},
		{"both over reports message", "this title is far too long", string(make([]byte, 201)), domain.ReasonMessageCharLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestimonialFixture(t, testPrices.FreePriceID)
			link, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
			require.NoError(t, err)

			sub := validSubmission()
			sub.Title, sub.Message = tt.title, tt.message

			_, err = f.svc.Complete(t.Context(), link.ID, sub, nil)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
			assert.Equal(t, tt.want, domain.ErrorReason(err))
		})
	}
}

func TestTestimonialService_CompleteValidatesSubmission(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)
	link, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
	require.NoError(t, err)

	sub := validSubmission()
	sub.Stars = 6

	_, err = f.svc.Complete(t.Context(), link.ID, sub, nil)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "stars")
}

func TestTestimonialService_CompleteAtQuotaAfterDowngrade(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)
	for i := 0; i < 10; i++ {
		f.store.seedTestimonial(t, f.page, domain.TestimonialStatusApproved)
	}
	// A link created while premium pushes the page past the free ceiling.
	link := f.store.seedTestimonial(t, f.page, domain.TestimonialStatusPending)

	_, err := f.svc.Complete(t.Context(), link.ID, validSubmission(), nil)
	assert.Equal(t, domain.ReasonTestimonialLimitReached, domain.ErrorReason(err))
}

func TestTestimonialService_CompleteLastSlot(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)
	for i := 0; i < 9; i++ {
		f.store.seedTestimonial(t, f.page, domain.TestimonialStatusApproved)
	}
	link, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
	require.NoError(t, err)

	_, err = f.svc.Complete(t.Context(), link.ID, validSubmission(), nil)
	assert.NoError(t, err)
}

func TestTestimonialService_CompleteWithImage(t *testing.T) {
	image := &domain.ImageFile{Filename: "me.png", ContentType: "image/png", Data: []byte("png")}

	t.Run("stored", func(t *testing.T) {
		f := newTestimonialFixture(t, testPrices.FreePriceID)
		link, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
		require.NoError(t, err)

		result, err := f.svc.Complete(t.Context(), link.ID, validSubmission(), image)
		require.NoError(t, err)
		assert.Equal(t, f.uploader.url, result.Testimonial.Image)
		assert.False(t, result.ImageAttachFailed)
	})

	t.Run("upload failure does not fail completion", func(t *testing.T) {
		f := newTestimonialFixture(t, testPrices.FreePriceID)
		f.uploader.err = errors.New("bucket unavailable")
		link, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
		require.NoError(t, err)

		result, err := f.svc.Complete(t.Context(), link.ID, validSubmission(), image)
		require.NoError(t, err)
		assert.Empty(t, result.Testimonial.Image)
		assert.True(t, result.ImageAttachFailed)
		assert.Equal(t, domain.TestimonialStatusApproved, result.Testimonial.Status)
	})
}

func TestTestimonialService_CompleteUnknown(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)

	_, err := f.svc.Complete(t.Context(), uuid.New(), validSubmission(), nil)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	assert.Equal(t, domain.ReasonTestimonialNotFound, domain.ErrorReason(err))
}

func TestTestimonialService_Update(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)
	link, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
	require.NoError(t, err)
	_, err = f.svc.Complete(t.Context(), link.ID, validSubmission(), nil)
	require.NoError(t, err)

	// Owner edits ignore expiry.
	f.clock.Advance(30 * 24 * time.Hour)

	rejected := domain.TestimonialStatusRejected
	title := "Edited"
	result, err := f.svc.Update(t.Context(), f.account.ID, link.ID, domain.TestimonialUpdate{
		Title:  &title,
		Status: &rejected,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Edited", result.Testimonial.Title)
	assert.Equal(t, domain.TestimonialStatusRejected, result.Testimonial.Status)
	assert.Equal(t, "Dana", result.Testimonial.CustomerName)
	assert.Zero(t, f.uploader.calls)
}

func TestTestimonialService_UpdateReplacesImage(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)
	image := &domain.ImageFile{Filename: "me.png", ContentType: "image/png", Data: []byte("png")}
	link, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
	require.NoError(t, err)
	_, err = f.svc.Complete(t.Context(), link.ID, validSubmission(), image)
	require.NoError(t, err)

	original := f.uploader.url
	f.uploader.url = "https://cdn.example.com/replacement.jpg"

	result, err := f.svc.Update(t.Context(), f.account.ID, link.ID, domain.TestimonialUpdate{}, image)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/replacement.jpg", result.Testimonial.Image)
	assert.Equal(t, []string{original}, f.uploader.removed)
}

func TestTestimonialService_UpdateRejects(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)
	link, err := f.svc.CreateLink(t.Context(), f.account.ID, f.page.ID)
	require.NoError(t, err)

	stranger := f.store.seedAccount(t, domain.BillingCache{})
	_, err = f.svc.Update(t.Context(), stranger.ID, link.ID, domain.TestimonialUpdate{}, nil)
	assert.Equal(t, domain.ReasonTestimonialNotFound, domain.ErrorReason(err))

	bogus := domain.TestimonialStatus("ARCHIVED")
	_, err = f.svc.Update(t.Context(), f.account.ID, link.ID, domain.TestimonialUpdate{Status: &bogus}, nil)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestTestimonialService_ListAndDelete(t *testing.T) {
	f := newTestimonialFixture(t, testPrices.FreePriceID)
	second := f.store.seedPage(t, f.account.ID, f.config.ID)
	a := f.store.seedTestimonial(t, f.page, domain.TestimonialStatusApproved)
	b := f.store.seedTestimonial(t, f.page, domain.TestimonialStatusRejected)
	c := f.store.seedTestimonial(t, second, domain.TestimonialStatusApproved)

	all, err := f.svc.List(t.Context(), domain.ListTestimonialsParams{AccountID: f.account.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	assert.Equal(t, int32(domain.DefaultPageLimit), all.Limit)

	approved := domain.TestimonialStatusApproved
	onPage, err := f.svc.List(t.Context(), domain.ListTestimonialsParams{
		AccountID:     f.account.ID,
		LandingPageID: &f.page.ID,
		Status:        &approved,
	})
	require.NoError(t, err)
	require.Len(t, onPage.Results, 1)
	assert.Equal(t, a.ID, onPage.Results[0].ID)

	stranger := f.store.seedAccount(t, domain.BillingCache{})
	_, err = f.svc.List(t.Context(), domain.ListTestimonialsParams{AccountID: stranger.ID, LandingPageID: &f.page.ID})
	assert.Equal(t, domain.ReasonLandingPageNotFound, domain.ErrorReason(err))

	require.NoError(t, f.svc.Delete(t.Context(), f.account.ID, a.ID))
	err = f.svc.Delete(t.Context(), f.account.ID, a.ID)
	assert.Equal(t, domain.ReasonTestimonialNotFound, domain.ErrorReason(err))

	n, err := f.svc.DeleteMany(t.Context(), f.account.ID, []uuid.UUID{b.ID, c.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = f.svc.DeleteMany(t.Context(), f.account.ID, nil)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}
