package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails to parse or verify.
var ErrInvalidToken = errors.New("auth: invalid token")

// Token types carried in the "type" claim.
const (
	TokenTypeAccess = "ACCESS"
)

// Claims are the claims on every token this package signs.
type Claims struct {
	jwt.RegisteredClaims
	Type string `json:"type"`
}

// Signer issues and verifies HS256 tokens with a fixed lifetime.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a Signer. A nil now uses time.Now.
func NewSigner(secret string, ttl time.Duration, now func() time.Time) *Signer {
	if now == nil {
		now = time.Now
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: now}
}

// Sign returns a token for subject with the given type claim and its expiry.
func (s *Signer) Sign(subject, typ string) (string, time.Time, error) {
	return s.SignWithID(subject, typ, "")
}

// SignWithID is Sign with a "jti" claim, which Verify hands back as Claims.ID.
func (s *Signer) SignWithID(subject, typ, id string) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Type: typ,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses token and checks its signature, expiry and type claim.
func (s *Signer) Verify(token, typ string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	if c.Type != typ {
		return nil, fmt.Errorf("%w: unexpected type %q", ErrInvalidToken, c.Type)
	}
	return c, nil
}
