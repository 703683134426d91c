package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID                       uuid.UUID
	Email                    string
	PasswordHash             string
	Name                     string
	CompanyName              sql.NullString
	Image                    sql.NullString
	StripeCustomerID         sql.NullString
	StripeSubscriptionID     sql.NullString
	StripePriceID            sql.NullString
	StripeSubscriptionStatus sql.NullString
	EmailVerifiedAt          sql.NullTime
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

type TestimonialConfig struct {
	ID               uuid.UUID
	AccountID        uuid.UUID
	Name             string
	Format           string
	TitleCharLimit   int32
	MessageCharLimit int32
	ExpirationLimit  int32
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type LandingPage struct {
	ID                  uuid.UUID
	AccountID           uuid.UUID
	TestimonialConfigID uuid.UUID
	Name                string
	Link                string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Testimonial struct {
	ID            uuid.UUID
	LandingPageID uuid.UUID
	AccountID     uuid.UUID
	Status        string
	CustomerName  sql.NullString
	Title         sql.NullString
	Message       sql.NullString
	Stars         sql.NullInt16
	Image         sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type VerificationRequest struct {
	Identifier string
	Type       string
	Token      string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

type Job struct {
	ID           uuid.UUID
	JobType      string
	Payload      json.RawMessage
	Status       string
	Priority     int32
	Attempts     int32
	MaxAttempts  int32
	ScheduledAt  time.Time
	StartedAt    sql.NullTime
	CompletedAt  sql.NullTime
	ErrorMessage sql.NullString
	CreatedAt    time.Time
}
