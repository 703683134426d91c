package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"

	"github.com/DukeRupert/vouch/internal/auth"
	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/metrics"
	"github.com/DukeRupert/vouch/internal/repository"
)

// =============================================================================
// Interface Definition
// =============================================================================

// VerificationService issues and checks short-lived single-use codes bound to
// an identifier and a purpose.
type VerificationService interface {
	// Issue stores a new code for (identifier, type) and emails it.
	// Returns domain.ECONFLICT (VERIFICATION_PENDING) while a previous code is live.
	// The returned request still carries the token; strip it with Public()
	// before it leaves the process.
	Issue(ctx context.Context, params domain.IssueVerificationParams) (*domain.VerificationRequest, error)

	// IssueForSignup issues an EMAIL_VERIFICATION code for an email that has
	// no account yet. Returns domain.ECONFLICT (ACCOUNT_ALREADY_EXISTS) otherwise.
	// The token is stripped.
	IssueForSignup(ctx context.Context, email string) (*domain.VerificationRequest, error)

	// Validate checks identifier/token/type against a live request without
	// consuming it and returns a signed grant.
	// Returns domain.EUNAUTHORIZED (INVALID_CODE) on any mismatch.
	Validate(ctx context.Context, identifier, token string, typ domain.VerificationType) (*domain.VerificationGrant, error)

	// VerifyGrant checks a grant returned by Validate and returns its
	// identifier. The grant is only honoured while the request it was issued
	// for is still stored and unexpired.
	// Returns domain.EUNAUTHORIZED (INVALID_GRANT) otherwise.
	VerifyGrant(ctx context.Context, grant string, typ domain.VerificationType) (string, error)

	// ConsumeEmailVerification verifies the account's email, provisions its
	// billing customer and deletes the request.
	ConsumeEmailVerification(ctx context.Context, identifier, token string) (*domain.Account, error)
}

// CustomerProvisioner attaches a billing customer and subscription to an
// email, reusing existing ones.
type CustomerProvisioner interface {
	ProvisionCustomer(ctx context.Context, email, name string) (*domain.BillingCache, error)
}

// =============================================================================
// Implementation
// =============================================================================

type verificationService struct {
	requests    VerificationStore
	accounts    AccountStore
	provisioner CustomerProvisioner
	emails      EmailQueue
	grants      *auth.Signer
	clock       Clock
	logger      *slog.Logger
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(
	requests VerificationStore,
	accounts AccountStore,
	provisioner CustomerProvisioner,
	emails EmailQueue,
	grants *auth.Signer,
	clock Clock,
	logger *slog.Logger,
) VerificationService {
	return &verificationService{
		requests:    requests,
		accounts:    accounts,
		provisioner: provisioner,
		emails:      emails,
		grants:      grants,
		clock:       clock,
		logger:      logger,
	}
}

func (s *verificationService) Issue(ctx context.Context, params domain.IssueVerificationParams) (*domain.VerificationRequest, error) {
	const op = "verification.issue"

	params.Identifier = strings.ToLower(strings.TrimSpace(params.Identifier))
	if params.Identifier == "" {
		return nil, domain.Invalid(op, "identifier is required")
	}
	if !params.Type.IsValid() {
		return nil, domain.Invalid(op, "unknown verification type")
	}

	now := s.clock.now()

	existing, err := s.requests.GetVerificationRequest(ctx, params.Identifier, params.Type)
	switch {
	case err == nil && !existing.IsExpiredAt(now):
		return nil, domain.Conflict(op, domain.ReasonVerificationPending)
	case err != nil && !isNotFound(err):
		return nil, domain.Internal(err, op, "failed to look up verification request")
	}

	token := params.Token
	if token == "" {
		token, err = generateVerificationCode()
		if err != nil {
			return nil, domain.Internal(err, op, "failed to generate code")
		}
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = domain.VerificationTTL
	}

	req, err := s.requests.IssueVerificationRequest(ctx, domain.VerificationRequest{
		Identifier: params.Identifier,
		Type:       params.Type,
		Token:      token,
		ExpiresAt:  now.Add(ttl),
	}, now)
	if errors.Is(err, repository.ErrVerificationLive) {
		return nil, domain.Conflict(op, domain.ReasonVerificationPending)
	}
	if err != nil {
		return nil, domain.Internal(err, op, "failed to store verification request")
	}

	subject, body := verificationEmail(req.Type, token)
	if err := s.emails.Enqueue(ctx, req.Identifier, subject, body); err != nil {
		// Nobody received the code, so free the key for a retry.
		if delErr := s.requests.DeleteVerificationRequest(ctx, req.Identifier, req.Type); delErr != nil {
			s.logger.Error("failed to release verification request", "identifier", req.Identifier, "error", delErr)
		}
		return nil, domain.Internal(err, op, "failed to enqueue verification email")
	}

	metrics.VerificationIssued(string(req.Type))
	s.logger.Info("verification code issued",
		"identifier", req.Identifier,
		"type", req.Type,
		"expires_at", req.ExpiresAt,
	)

	return req, nil
}

func (s *verificationService) IssueForSignup(ctx context.Context, email string) (*domain.VerificationRequest, error) {
	const op = "verification.issue_for_signup"

	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, domain.Wrap(err, domain.EINVALID, op, "Invalid email address")
	}

	_, err := s.accounts.GetAccountByEmail(ctx, email)
	if err == nil {
		return nil, domain.Conflict(op, domain.ReasonAccountAlreadyExists)
	}
	if !isNotFound(err) {
		return nil, domain.Internal(err, op, "failed to check email availability")
	}

	req, err := s.Issue(ctx, domain.IssueVerificationParams{
		Identifier: email,
		Type:       domain.VerificationEmail,
		TTL:        domain.PreSignupVerificationTTL,
	})
	if err != nil {
		return nil, err
	}
	public := req.Public()
	return &public, nil
}

func (s *verificationService) Validate(ctx context.Context, identifier, token string, typ domain.VerificationType) (*domain.VerificationGrant, error) {
	const op = "verification.validate"

	identifier = strings.ToLower(strings.TrimSpace(identifier))

	req, err := s.requests.GetVerificationRequest(ctx, identifier, typ)
	if err != nil && !isNotFound(err) {
		return nil, domain.Internal(err, op, "failed to look up verification request")
	}
	if err != nil || req.IsExpiredAt(s.clock.now()) || !tokensEqual(req.Token, token) {
		s.logger.Warn("verification code rejected", "identifier", identifier, "type", typ)
		return nil, domain.Unauthorized(op, domain.ReasonInvalidCode)
	}

	signed, expiresAt, err := s.grants.SignWithID(identifier, string(typ), grantBinding(req))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to sign grant")
	}

	return &domain.VerificationGrant{
		Token:      signed,
		Identifier: identifier,
		Type:       typ,
		ExpiresAt:  expiresAt,
	}, nil
}

func (s *verificationService) VerifyGrant(ctx context.Context, grant string, typ domain.VerificationType) (string, error) {
	const op = "verification.verify_grant"

	claims, err := s.grants.Verify(grant, string(typ))
	if err != nil {
		s.logger.Warn("verification grant rejected", "type", typ, "error", err)
		return "", domain.Unauthorized(op, domain.ReasonInvalidGrant)
	}

	req, err := s.requests.GetVerificationRequest(ctx, claims.Subject, typ)
	if err != nil && !isNotFound(err) {
		return "", domain.Internal(err, op, "failed to look up verification request")
	}
	if err != nil || req.IsExpiredAt(s.clock.now()) || grantBinding(req) != claims.ID {
		s.logger.Warn("verification grant outlived its code", "identifier", claims.Subject, "type", typ)
		return "", domain.Unauthorized(op, domain.ReasonInvalidGrant)
	}
	return claims.Subject, nil
}

func verificationEmail(typ domain.VerificationType, token string) (subject, body string) {
	if typ == domain.VerificationPasswordRecovery {
		return fmt.Sprintf("Your password recovery code is %s", token),
			fmt.Sprintf("Copy and paste this code to reset your password: %s\n\nIf you did not ask to reset your password, you can ignore this email.", token)
	}
	return fmt.Sprintf("Your email verification code is %s", token),
		fmt.Sprintf("Copy and paste this code to verify your email: %s", token)
}

// grantBinding ties a grant to one issuance of a request. Reissuing always
// moves created_at forward.
func grantBinding(req *domain.VerificationRequest) string {
	return strconv.FormatInt(req.CreatedAt.UnixMicro(), 10)
}

func (s *verificationService) ConsumeEmailVerification(ctx context.Context, identifier, token string) (*domain.Account, error) {
	const op = "verification.consume_email"

	identifier = strings.ToLower(strings.TrimSpace(identifier))
	now := s.clock.now()

	req, err := s.requests.GetVerificationRequest(ctx, identifier, domain.VerificationEmail)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonVerificationNotFound, "failed to look up verification request")
	}
	if req.IsExpiredAt(now) {
		return nil, domain.Conflict(op, domain.ReasonVerificationExpired)
	}
	if !tokensEqual(req.Token, token) {
		s.logger.Warn("email verification code mismatch", "identifier", identifier)
		return nil, domain.Unauthorized(op, domain.ReasonInvalidCode)
	}

	account, err := s.accounts.GetAccountByEmail(ctx, identifier)
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonAccountNotFound, "failed to get account")
	}
	if account.IsEmailVerified() {
		return nil, domain.Unprocessable(op, domain.ReasonEmailAlreadyVerified)
	}

	cache, err := s.provisioner.ProvisionCustomer(ctx, account.Email, account.DisplayName())
	if err != nil {
		return nil, err
	}

	verified, err := s.accounts.MarkEmailVerified(ctx, domain.BillingSyncParams{
		AccountID:          account.ID,
		CustomerID:         cache.CustomerID,
		SubscriptionID:     cache.SubscriptionID,
		PriceID:            cache.PriceID,
		SubscriptionStatus: cache.SubscriptionStatus,
	}, identifier, now)
	if errors.Is(err, repository.ErrAlreadyVerified) {
		return nil, domain.Unprocessable(op, domain.ReasonEmailAlreadyVerified)
	}
	if err != nil {
		return nil, storeErr(err, op, domain.ReasonAccountNotFound, "failed to mark email verified")
	}

	s.logger.Info("email verified",
		"account_id", verified.ID,
		"customer_id", cache.CustomerID,
		"subscription_id", cache.SubscriptionID,
	)

	verified.PasswordHash = ""
	return verified, nil
}

// generateVerificationCode draws a code uniformly from
// [VerificationCodeMin, VerificationCodeMax].
func generateVerificationCode() (string, error) {
	span := big.NewInt(domain.VerificationCodeMax - domain.VerificationCodeMin + 1)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+domain.VerificationCodeMin, 10), nil
}

func tokensEqual(stored, given string) bool {
	return given != "" && subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
