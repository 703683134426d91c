package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DukeRupert/vouch/internal/auth"
	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRequireAccount authenticates "Bearer <uuid>" without a signer.
func fakeRequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bytes.CutPrefix([]byte(r.Header.Get("Authorization")), []byte("Bearer "))
		if !ok {
			UnauthorizedResponse(w, r, discardLogger())
			return
		}
		id, err := uuid.ParseBytes(raw)
		if err != nil {
			UnauthorizedResponse(w, r, discardLogger())
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.SetAccountID(r.Context(), id)))
	})
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asAccount(req *http.Request, id uuid.UUID) *http.Request {
	req.Header.Set("Authorization", "Bearer "+id.String())
	return req
}

func serve(mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	return decodeBody[ErrorBody](t, rec).Error
}

// reasonErr builds the error a service returns for a stable reason key.
func reasonErr(code, reason string) error {
	return domain.Errorf(code, "test.op", "%s", reason)
}
