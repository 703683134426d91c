package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DukeRupert/vouch/internal/auth"
	"github.com/DukeRupert/vouch/internal/handler"
	"github.com/google/uuid"
)

// Authenticator resolves an access token to the account it was issued for.
// service.AccountService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

// BearerAuth authenticates requests carrying "Authorization: Bearer <token>".
type BearerAuth struct {
	accounts Authenticator
	logger   *slog.Logger
}

func NewBearerAuth(accounts Authenticator, logger *slog.Logger) *BearerAuth {
	return &BearerAuth{
		accounts: accounts,
		logger:   logger,
	}
}

// RequireAccount rejects requests without a valid access token and stores
// the authenticated account ID in the request context.
//
// Usage:
//
//	mux.Handle("GET /api/account", authMw.RequireAccount(accountHandler))
func (m *BearerAuth) RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		accountID, err := m.accounts.Authenticate(r.Context(), token)
		if err != nil {
			handler.ErrorResponse(w, r, m.logger, err)
			return
		}

		ctx := auth.SetAccountID(r.Context(), accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken returns the token from the Authorization header, or "".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Stack composes multiple middleware functions into a single middleware.
//
// Middleware is applied in the order provided, meaning the first middleware
// in the slice is the outermost (runs first on request, last on response).
//
//	stack := Stack(security.Handler, logging.Handler, authMw.RequireAccount)
//	mux.Handle("GET /api/account", stack(accountHandler))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
