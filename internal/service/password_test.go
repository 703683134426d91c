package service

import (
	"strings"
	"testing"

	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantMsg  string // empty means valid
	}{
		{"seven chars", "Abcdef1", "at least 8"},
		{"eight chars", "Abcdef12", ""},
		{"bcrypt limit", strings.Repeat("Aa1", 24), ""},
		{"past bcrypt limit", strings.Repeat("Aa1", 25), "72 characters"},
		{"digits only", "12345678", "letter"},
		{"digits and symbols", "1234!@#$", "letter"},
		{"letters only", "Abcdefgh", "number"},
		{"letters and symbols", "Abcd!@#$", "number"},
		{"unicode letters count", "Grüße2024", ""},
		{"common", "Password1", "common"},
		{"common any case", "QWERTY123", "common"},
		{"passphrase", "correct horse 7 battery", ""},
		{"mixed", "Th1sIsF1ne!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePassword(tt.password)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
			assert.Contains(t, domain.ErrorMessage(err), tt.wantMsg)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"owner@example.com", true},
		{"owner@mail.example.co", true},
		{"owner+vouch@example.com", true},
		{"", false},
		{"owner.example.com", false},
		{"owner@@example.com", false},
		{"@example.com", false},
		{"owner@", false},
		{"owner@localhost", false},
		{"owner..name@example.com", false},
		{strings.Repeat("a", 250) + "@example.com", false},
	}

	for _, tt := range tests {
		err := validateEmail(tt.email)
		if tt.valid {
			assert.NoError(t, err, tt.email)
		} else {
			assert.Error(t, err, tt.email)
		}
	}
}
