package internal

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        int
	LogLevel    string
	DatabaseUrl string

	// Public URL of this API, used for local file URLs.
	BaseURL string

	// FrontendURL is where checkout returns to.
	FrontendURL string

	// Quotas
	Quotas domain.QuotaPolicy

	// Tokens
	AccessTokenSecret       string
	AccessTokenTTL          time.Duration
	VerificationGrantSecret string
	VerificationGrantTTL    time.Duration

	// Stripe Billing Configuration
	StripeSecretKey      string // sk_test_... or sk_live_...
	StripeWebhookSecret  string // whsec_...
	StripeFreePriceID    string
	StripePremiumPriceID string

	// Email delivery: "smtp", "postmark" or "log"
	EmailProvider        string
	EmailFrom            string
	EmailFromName        string
	EmailReplyTo         string
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	PostmarkServerToken  string
	PostmarkAccountToken string

	// Storage Configuration
	StorageProvider string // "local" or "r2"

	// Local Storage (development)
	LocalStoragePath string
	LocalStorageURL  string

	// R2 Storage (production)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string // Optional custom domain URL

	// Worker Configuration
	WorkerEnabled      bool
	WorkerConcurrency  int
	WorkerPollInterval time.Duration
	WorkerJobTimeout   time.Duration

	// Sentiment classifier
	AIProvider       string // "anthropic" or "mock"
	AnthropicAPIKey  string
	AnthropicModel   string
	AIMaxRetries     int
	AIRetryBaseDelay time.Duration
	AIRequestTimeout time.Duration

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

// IsDevelopment reports whether the process runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	defaults := domain.DefaultQuotaPolicy()

	cfg := &Config{
		Env:         getEnv("ENV", "development"),
		Port:        getEnvInt("PORT", 8080),
		LogLevel:    getEnv("LOG_LEVEL", "debug"),
		DatabaseUrl: os.Getenv("DATABASE_URL"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		Quotas: domain.QuotaPolicy{
			FreeLandingPages:    getEnvInt64("FREE_PLAN_LANDING_PAGES_QUOTA", defaults.FreeLandingPages),
			PremiumLandingPages: getEnvInt64("PREMIUM_PLAN_LANDING_PAGES_QUOTA", defaults.PremiumLandingPages),
			FreeTestimonials:    getEnvInt64("FREE_PLAN_TESTIMONIALS_QUOTA", defaults.FreeTestimonials),
			PremiumTestimonials: getEnvInt64("PREMIUM_PLAN_TESTIMONIALS_QUOTA", defaults.PremiumTestimonials),
			TestimonialConfigs:  getEnvInt64("TESTIMONIAL_CONFIGS_QUOTA", defaults.TestimonialConfigs),
		},

		AccessTokenSecret:       os.Getenv("ACCESS_TOKEN_SECRET"),
		AccessTokenTTL:          getEnvDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		VerificationGrantSecret: os.Getenv("VERIFICATION_GRANT_SECRET"),
		VerificationGrantTTL:    getEnvDuration("VERIFICATION_GRANT_TTL", 5*time.Minute),

		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripeFreePriceID:    os.Getenv("STRIPE_FREE_PRICE_ID"),
		StripePremiumPriceID: os.Getenv("STRIPE_PREMIUM_PRICE_ID"),

		// Email defaults to Mailhog (development)
		EmailProvider:        getEnv("EMAIL_PROVIDER", "smtp"),
		EmailFrom:            getEnv("EMAIL_FROM", "noreply@vouch.app"),
		EmailFromName:        getEnv("EMAIL_FROM_NAME", "Vouch"),
		EmailReplyTo:         getEnv("EMAIL_REPLY_TO", ""),
		SMTPHost:             getEnv("SMTP_HOST", "localhost"),
		SMTPPort:             getEnvInt("SMTP_PORT", 1025),
		SMTPUsername:         getEnv("SMTP_USERNAME", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		PostmarkServerToken:  getEnv("POSTMARK_SERVER_TOKEN", ""),
		PostmarkAccountToken: getEnv("POSTMARK_ACCOUNT_TOKEN", ""),

		// Storage defaults to local filesystem for development
		StorageProvider:  getEnv("STORAGE_PROVIDER", "local"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./storage"),
		LocalStorageURL:  getEnv("LOCAL_STORAGE_URL", "http://localhost:8080/files"),

		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),

		WorkerEnabled:      getEnvBool("WORKER_ENABLED", true),
		WorkerConcurrency:  getEnvInt("WORKER_CONCURRENCY", 2),
		WorkerPollInterval: getEnvDuration("WORKER_POLL_INTERVAL", 2*time.Second),
		WorkerJobTimeout:   getEnvDuration("WORKER_JOB_TIMEOUT", time.Minute),

		AIProvider:       getEnv("AI_PROVIDER", "mock"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-20241022"),
		AIMaxRetries:     getEnvInt("AI_MAX_RETRIES", 3),
		AIRetryBaseDelay: getEnvDuration("AI_RETRY_BASE_DELAY", time.Second),
		AIRequestTimeout: getEnvDuration("AI_REQUEST_TIMEOUT", 20*time.Second),

		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	required := []struct{ name, value string }{
		{"DATABASE_URL", c.DatabaseUrl},
		{"ACCESS_TOKEN_SECRET", c.AccessTokenSecret},
		{"VERIFICATION_GRANT_SECRET", c.VerificationGrantSecret},
		{"STRIPE_SECRET_KEY", c.StripeSecretKey},
		{"STRIPE_WEBHOOK_SECRET", c.StripeWebhookSecret},
		{"STRIPE_FREE_PRICE_ID", c.StripeFreePriceID},
		{"STRIPE_PREMIUM_PRICE_ID", c.StripePremiumPriceID},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}
	if c.StripeFreePriceID == c.StripePremiumPriceID {
		return fmt.Errorf("STRIPE_FREE_PRICE_ID and STRIPE_PREMIUM_PRICE_ID must differ")
	}

	q := c.Quotas
	for name, v := range map[string]int64{
		"FREE_PLAN_LANDING_PAGES_QUOTA":    q.FreeLandingPages,
		"PREMIUM_PLAN_LANDING_PAGES_QUOTA": q.PremiumLandingPages,
		"FREE_PLAN_TESTIMONIALS_QUOTA":     q.FreeTestimonials,
		"PREMIUM_PLAN_TESTIMONIALS_QUOTA":  q.PremiumTestimonials,
		"TESTIMONIAL_CONFIGS_QUOTA":        q.TestimonialConfigs,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}

	switch c.EmailProvider {
	case "smtp":
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when EMAIL_PROVIDER is 'smtp'")
		}
	case "postmark":
		if c.PostmarkServerToken == "" {
			return fmt.Errorf("POSTMARK_SERVER_TOKEN is required when EMAIL_PROVIDER is 'postmark'")
		}
	case "log":
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be 'smtp', 'postmark' or 'log', got: %s", c.EmailProvider)
	}

	switch c.StorageProvider {
	case "r2":
		if c.R2AccountID == "" || c.R2AccessKeyID == "" || c.R2SecretAccessKey == "" || c.R2BucketName == "" {
			return fmt.Errorf("R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_BUCKET_NAME are required when STORAGE_PROVIDER is 'r2'")
		}
	case "local":
	default:
		return fmt.Errorf("STORAGE_PROVIDER must be either 'local' or 'r2', got: %s", c.StorageProvider)
	}

	switch c.AIProvider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is 'anthropic'")
		}
	case "mock":
	default:
		return fmt.Errorf("AI_PROVIDER must be either 'anthropic' or 'mock', got: %s", c.AIProvider)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
