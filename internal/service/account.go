package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"github.com/DukeRupert/vouch/internal/auth"
	"github.com/DukeRupert/vouch/internal/billing"
	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// Configuration Constants
// =============================================================================

const (
	// BcryptCost is the cost factor for bcrypt password hashing.
	//
	// SECURITY NOTE: This should NOT be configurable at runtime to prevent
	// accidental weakening. If you need to change it, do so here and redeploy.
	BcryptCost = 12

	// MinPasswordLength is the minimum password length.
	// NIST SP 800-63B recommends 8+ characters minimum.
	MinPasswordLength = 8

	// MaxPasswordLength prevents DoS via bcrypt on very long passwords.
	// bcrypt has a 72-byte limit anyway, but we cap earlier for clarity.
	MaxPasswordLength = 72
)

// dummyHash is compared against when no account matches so a missing email
// costs the same as a wrong password.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// =============================================================================
// Interface Definition
// =============================================================================

// AccountService defines account operations for admins.
type AccountService interface {
	// Register creates an account and sends an EMAIL_VERIFICATION code.
	// Returns domain.ECONFLICT (ACCOUNT_ALREADY_EXISTS) if the email is taken.
	// Returns domain.EINVALID for validation errors.
	Register(ctx context.Context, params domain.RegisterParams) (*domain.Account, error)

	// Login checks credentials and returns a bearer access token.
	// Returns domain.EUNAUTHORIZED (INVALID_CREDENTIALS) on any mismatch.
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)

	// Authenticate verifies an access token and returns the account id.
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)

	// GetByID retrieves an account. The password hash is cleared.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// UpdateProfile edits name, company and image. Billing fields are not reachable.
	UpdateProfile(ctx context.Context, params domain.ProfileUpdateParams) (*domain.Account, error)

	// GetQuotaUsage reports usage and ceilings for the account's cached tier.
	GetQuotaUsage(ctx context.Context, id uuid.UUID) (*domain.QuotaUsage, error)

	// ResendEmailVerification issues a fresh code for an unverified account.
	// Returns domain.EUNPROCESSABLE (EMAIL_ALREADY_VERIFIED) once verified.
	ResendEmailVerification(ctx context.Context, email string) (*domain.VerificationRequest, error)

	// RecoverPassword sets a new password for the identifier of a
	// PASSWORD_RECOVERY grant. The underlying code is consumed.
	RecoverPassword(ctx context.Context, grant, newPassword string) error
}

// =============================================================================
// Implementation
// =============================================================================

type accountService struct {
	accounts     AccountStore
	requests     VerificationStore
	verification VerificationService
	quota        QuotaService
	prices       billing.PriceConfig
	access       *auth.Signer
	logger       *slog.Logger
}

// AccountDeps groups the collaborators of AccountService.
type AccountDeps struct {
	Accounts     AccountStore
	Requests     VerificationStore
	Verification VerificationService
	Quota        QuotaService
	Prices       billing.PriceConfig
	Access       *auth.Signer
}

// NewAccountService creates a new AccountService.
func NewAccountService(deps AccountDeps, logger *slog.Logger) AccountService {
	return &accountService{
		accounts:     deps.Accounts,
		requests:     deps.Requests,
		verification: deps.Verification,
		quota:        deps.Quota,
		prices:       deps.Prices,
		access:       deps.Access,
		logger:       logger,
	}
}

// Register creates a new account.
//
// The email uniqueness check runs before hashing; on a duplicate the password
// is hashed anyway to keep timing uniform.
func (s *accountService) Register(ctx context.Context, params domain.RegisterParams) (*domain.Account, error) {
	const op = "account.register"

	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	params.Name = strings.TrimSpace(params.Name)
	params.CompanyName = strings.TrimSpace(params.CompanyName)

	if err := validateEmail(params.Email); err != nil {
		return nil, domain.Wrap(err, domain.EINVALID, op, "Invalid email address")
	}
	if params.Name == "" {
		return nil, domain.Invalid(op, "Name is required")
	}
	if err := validatePassword(params.Password); err != nil {
		return nil, domain.Wrap(err, domain.EINVALID, op, "Invalid password")
	}

	_, err := s.accounts.GetAccountByEmail(ctx, params.Email)
	if err == nil {
		_, _ = bcrypt.GenerateFromPassword([]byte(params.Password), BcryptCost)
		return nil, domain.Conflict(op, domain.ReasonAccountAlreadyExists)
	}
	if !isNotFound(err) {
		return nil, domain.Internal(err, op, "Failed to check email availability")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), BcryptCost)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to hash password")
	}

	account, err := s.accounts.CreateAccount(ctx, params.Email, string(hash), params.Name, params.CompanyName)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, domain.Conflict(op, domain.ReasonAccountAlreadyExists)
	}
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to create account")
	}
	account.PasswordHash = ""

	s.logger.Info("account registered", "account_id", account.ID, "email", account.Email)

	_, err = s.verification.Issue(ctx, domain.IssueVerificationParams{
		Identifier: account.Email,
		Type:       domain.VerificationEmail,
		TTL:        domain.SignupVerificationTTL,
	})
	switch {
	case err == nil:
	case domain.ErrorReason(err) == domain.ReasonVerificationPending:
		// A pre-signup code for this email is still live and remains usable.
		s.logger.Info("keeping live verification code", "account_id", account.ID)
	default:
		// The account exists; the owner can ask for a new code.
		s.logger.Error("failed to issue signup verification code", "account_id", account.ID, "error", err)
	}

	return account, nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	const op = "account.login"

	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, domain.Unauthorized(op, domain.ReasonInvalidCredentials)
		}
		return nil, domain.Internal(err, op, "Failed to retrieve account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, domain.Unauthorized(op, domain.ReasonInvalidCredentials)
	}

	token, expiresAt, err := s.access.Sign(account.ID.String(), auth.TokenTypeAccess)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to issue access token")
	}
	account.PasswordHash = ""

	s.logger.Info("account logged in", "account_id", account.ID)

	return &domain.LoginResult{
		Account:     account,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *accountService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	const op = "account.authenticate"

	claims, err := s.access.Verify(token, auth.TokenTypeAccess)
	if err != nil {
		return uuid.Nil, domain.Unauthorized(op, "Invalid or expired access token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, domain.Unauthorized(op, "Invalid or expired access token")
	}
	return id, nil
}

func (s *accountService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	const op = "account.get_by_id"

	account, err := s.accounts.GetAccountByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonAccountNotFound, "Failed to retrieve account")
	}
	account.PasswordHash = ""
	return account, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, params domain.ProfileUpdateParams) (*domain.Account, error) {
	const op = "account.update_profile"

	params.Name = strings.TrimSpace(params.Name)
	params.CompanyName = strings.TrimSpace(params.CompanyName)
	params.Image = strings.TrimSpace(params.Image)

	if params.Name == "" {
		return nil, domain.Invalid(op, "Name is required")
	}

	account, err := s.accounts.UpdateAccountProfile(ctx, params)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonAccountNotFound, "Failed to update profile")
	}
	account.PasswordHash = ""

	s.logger.Info("account profile updated", "account_id", params.AccountID)
	return account, nil
}

func (s *accountService) GetQuotaUsage(ctx context.Context, id uuid.UUID) (*domain.QuotaUsage, error) {
	const op = "account.get_quota_usage"

	account, err := s.accounts.GetAccountByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonAccountNotFound, "Failed to retrieve account")
	}

	return s.quota.GetUsage(ctx, account.ID, account.Billing.Tier(s.prices.FreePriceID))
}

func (s *accountService) ResendEmailVerification(ctx context.Context, email string) (*domain.VerificationRequest, error) {
	const op = "account.resend_email_verification"

	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonAccountNotFound, "Failed to retrieve account")
	}
	if account.IsEmailVerified() {
		return nil, domain.Unprocessable(op, domain.ReasonEmailAlreadyVerified)
	}

	req, err := s.verification.Issue(ctx, domain.IssueVerificationParams{
		Identifier: account.Email,
		Type:       domain.VerificationEmail,
	})
	if err != nil {
		return nil, err
	}
	public := req.Public()
	return &public, nil
}

func (s *accountService) RecoverPassword(ctx context.Context, grant, newPassword string) error {
	const op = "account.recover_password"

	identifier, err := s.verification.VerifyGrant(ctx, grant, domain.VerificationPasswordRecovery)
	if err != nil {
		return err
	}

	if err := validatePassword(newPassword); err != nil {
		return domain.Wrap(err, domain.EINVALID, op, "Invalid password")
	}

	account, err := s.accounts.GetAccountByEmail(ctx, identifier)
	if err != nil {
		return storeErr(err, op, domain.ReasonAccountNotFound, "Failed to retrieve account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), BcryptCost)
	if err != nil {
		return domain.Internal(err, op, "Failed to hash password")
	}
	if err := s.accounts.UpdateAccountPassword(ctx, account.ID, string(hash)); err != nil {
		return storeErr(err, op, domain.ReasonAccountNotFound, "Failed to update password")
	}

	if err := s.requests.DeleteVerificationRequest(ctx, identifier, domain.VerificationPasswordRecovery); err != nil {
		s.logger.Error("failed to consume password recovery code", "account_id", account.ID, "error", err)
	}

	s.logger.Info("password recovered", "account_id", account.ID)
	return nil
}

// =============================================================================
// Validation Helpers
// =============================================================================

// validateEmail performs basic email format validation.
func validateEmail(email string) error {
	if email == "" {
		return domain.Invalid("", "Email is required")
	}
	if len(email) > 254 {
		return domain.Invalid("", "Email must be 254 characters or less")
	}

	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") || at == len(email)-1 {
		return domain.Invalid("", "Email must contain exactly one @ symbol between a name and a domain")
	}
	if !strings.Contains(email[at+1:], ".") {
		return domain.Invalid("", "Email domain must contain a dot")
	}
	if strings.Contains(email, "..") {
		return domain.Invalid("", "Email cannot contain consecutive dots")
	}
	return nil
}

// commonPasswords are rejected even when they satisfy the other rules.
var commonPasswords = map[string]bool{
	"password1":   true,
	"password123": true,
	"qwerty123":   true,
	"letmein1":    true,
	"welcome1":    true,
	"admin123":    true,
	"iloveyou1":   true,
	"abc12345":    true,
	"monkey123":   true,
	"dragon123":   true,
}

// validatePassword validates password strength requirements.
//
// Rules:
// - Minimum length: 8 characters (NIST SP 800-63B)
// - Maximum length: 72 characters (bcrypt limit)
// - At least one letter and one number
// - Not a well-known common password
func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return domain.Invalid("", "Password must be at least 8 characters")
	}
	if len(password) > MaxPasswordLength {
		return domain.Invalid("", "Password must be 72 characters or less")
	}

	var hasLetter, hasNumber bool
	for _, c := range password {
		switch {
		case unicode.IsLetter(c):
			hasLetter = true
		case unicode.IsDigit(c):
			hasNumber = true
		}
	}
	if !hasLetter {
		return domain.Invalid("", "Password must contain at least one letter")
	}
	if !hasNumber {
		return domain.Invalid("", "Password must contain at least one number")
	}

	if commonPasswords[strings.ToLower(password)] {
		return domain.Invalid("", "Password is too common")
	}
	return nil
}
