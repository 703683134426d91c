package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_SignAndVerify(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := NewSigner("secret", 5*time.Minute, clock)

	token, exp, err := s.Sign("a@example.com", "PASSWORD_RECOVERY")
	require.NoError(t, err)
	assert.Equal(t, now.Add(5*time.Minute), exp)

	c, err := s.Verify(token, "PASSWORD_RECOVERY")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", c.Subject)
	assert.Equal(t, "PASSWORD_RECOVERY", c.Type)
	assert.Empty(t, c.ID)
}

func TestSigner_SignWithID(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSigner("secret", 5*time.Minute, func() time.Time { return now })

	token, _, err := s.SignWithID("a@example.com", "PASSWORD_RECOVERY", "1740830400000000")
	require.NoError(t, err)

	c, err := s.Verify(token, "PASSWORD_RECOVERY")
	require.NoError(t, err)
	assert.Equal(t, "1740830400000000", c.ID)
}

func TestSigner_VerifyRejects(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSigner("secret", 5*time.Minute, func() time.Time { return now })
	token, _, err := s.Sign("a@example.com", TokenTypeAccess)
	require.NoError(t, err)

	tests := []struct {
		name   string
		signer *Signer
		token  string
		typ    string
	}{
		{"wrong type", s, token, "PASSWORD_RECOVERY"},
		{"wrong secret", NewSigner("other", 5*time.Minute, func() time.Time { return now }), token, TokenTypeAccess},
		{"expired", NewSigner("secret", 5*time.Minute, func() time.Time { return now.Add(10 * time.Minute) }), token, TokenTypeAccess},
		{"garbage", s, "not-a-token", TokenTypeAccess},
		{"empty", s, "", TokenTypeAccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.signer.Verify(tt.token, tt.typ)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
