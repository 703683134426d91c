// Package auth provides authentication context helpers and signed tokens.
//
// This package is designed to be imported by both middleware and handler
// packages without causing import cycles.
package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// accountIDContextKey is the key used to store the authenticated account id in context.
	accountIDContextKey contextKey = "account_id"
)

// GetAccountID retrieves the authenticated account id from the context.
//
// Returns uuid.Nil and false if no account is authenticated.
//
// Usage:
//
//	accountID, ok := auth.GetAccountID(r.Context())
//	if !ok {
//	    // Handle unauthenticated request
//	}
func GetAccountID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(accountIDContextKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetAccountIDFromRequest is GetAccountID for a request.
func GetAccountIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	return GetAccountID(r.Context())
}

// SetAccountID stores an account id in the context.
//
// This is called by the bearer authentication middleware after validating
// an access token.
func SetAccountID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, accountIDContextKey, id)
}
