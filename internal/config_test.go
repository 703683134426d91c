package internal

import (
	"testing"
	"time"

	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/vouch_test")
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("VERIFICATION_GRANT_SECRET", "grant")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_123")
	t.Setenv("STRIPE_FREE_PRICE_ID", "price_free")
	t.Setenv("STRIPE_PREMIUM_PRICE_ID", "price_premium")

	// Blank values fall back to defaults, so a developer's shell cannot leak in.
	for _, key := range []string{
		"ENV", "LOG_LEVEL",
		"EMAIL_PROVIDER", "SMTP_HOST", "SMTP_USERNAME", "SMTP_PASSWORD",
		"POSTMARK_SERVER_TOKEN", "POSTMARK_ACCOUNT_TOKEN",
		"STORAGE_PROVIDER", "R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME", "R2_PUBLIC_URL",
		"AI_PROVIDER", "ANTHROPIC_API_KEY",
		"METRICS_USERNAME", "METRICS_PASSWORD",
		"WORKER_ENABLED", "VERIFICATION_GRANT_TTL",
		"FREE_PLAN_LANDING_PAGES_QUOTA", "PREMIUM_PLAN_LANDING_PAGES_QUOTA",
		"FREE_PLAN_TESTIMONIALS_QUOTA", "PREMIUM_PLAN_TESTIMONIALS_QUOTA", "TESTIMONIAL_CONFIGS_QUOTA",
	} {
		t.Setenv(key, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, domain.DefaultQuotaPolicy(), cfg.Quotas)
	assert.Equal(t, 5*time.Minute, cfg.VerificationGrantTTL)
	assert.Equal(t, "smtp", cfg.EmailProvider)
	assert.Equal(t, "local", cfg.StorageProvider)
	assert.Equal(t, "mock", cfg.AIProvider)
	assert.True(t, cfg.WorkerEnabled)
}

func TestNewConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("FREE_PLAN_LANDING_PAGES_QUOTA", "7")
	t.Setenv("PREMIUM_PLAN_TESTIMONIALS_QUOTA", "1000")
	t.Setenv("ACCESS_TOKEN_TTL", "2h")
	t.Setenv("WORKER_ENABLED", "false")
	t.Setenv("EMAIL_PROVIDER", "postmark")
	t.Setenv("POSTMARK_SERVER_TOKEN", "pm-token")
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, int64(7), cfg.Quotas.FreeLandingPages)
	assert.Equal(t, int64(1000), cfg.Quotas.PremiumTestimonials)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenTTL)
	assert.False(t, cfg.WorkerEnabled)
	assert.Equal(t, "pm-token", cfg.PostmarkServerToken)
}

func TestNewConfig_InvalidNumbersFallBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "eighty")
	t.Setenv("ACCESS_TOKEN_TTL", "forever")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing database", map[string]string{"DATABASE_URL": ""}, "DATABASE_URL"},
		{"missing grant secret", map[string]string{"VERIFICATION_GRANT_SECRET": ""}, "VERIFICATION_GRANT_SECRET"},
		{"same prices", map[string]string{"STRIPE_PREMIUM_PRICE_ID": "price_free"}, "must differ"},
		{"negative quota", map[string]string{"TESTIMONIAL_CONFIGS_QUOTA": "-1"}, "TESTIMONIAL_CONFIGS_QUOTA"},
		{"unknown email provider", map[string]string{"EMAIL_PROVIDER": "carrier-pigeon"}, "EMAIL_PROVIDER"},
		{"postmark without token", map[string]string{"EMAIL_PROVIDER": "postmark"}, "POSTMARK_SERVER_TOKEN"},
		{"r2 without credentials", map[string]string{"STORAGE_PROVIDER": "r2"}, "R2_ACCOUNT_ID"},
		{"unknown storage", map[string]string{"STORAGE_PROVIDER": "s3"}, "STORAGE_PROVIDER"},
		{"anthropic without key", map[string]string{"AI_PROVIDER": "anthropic"}, "ANTHROPIC_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := NewConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
