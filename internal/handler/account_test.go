package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/DukeRupert/vouch/internal/domain"
	"github.com/DukeRupert/vouch/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAccounts implements the AccountService methods the handler calls.
type fakeAccounts struct {
	service.AccountService

	account    *domain.Account
	err        error
	gotProfile domain.ProfileUpdateParams
	gotParams  domain.RegisterParams
}

func (f *fakeAccounts) Register(_ context.Context, params domain.RegisterParams) (*domain.Account, error) {
	f.gotParams = params
	return f.account, f.err
}

func (f *fakeAccounts) Login(_ context.Context, email, password string) (*domain.LoginResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.LoginResult{
		Account:     f.account,
		AccessToken: "signed-token",
		ExpiresAt:   time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id != f.account.ID {
		return nil, domain.NotFound("account.GetByID", domain.ReasonAccountNotFound)
	}
	return f.account, nil
}

func (f *fakeAccounts) UpdateProfile(_ context.Context, params domain.ProfileUpdateParams) (*domain.Account, error) {
	f.gotProfile = params
	if f.err != nil {
		return nil, f.err
	}
	updated := *f.account
	updated.Name = params.Name
	return &updated, nil
}

func (f *fakeAccounts) GetQuotaUsage(_ context.Context, _ uuid.UUID) (*domain.QuotaUsage, error) {
	return &domain.QuotaUsage{Tier: domain.TierFree}, f.err
}

func (f *fakeAccounts) RecoverPassword(_ context.Context, grant, password string) error {
	return f.err
}

func newAccountMux(accounts *fakeAccounts) *http.ServeMux {
	mux := http.NewServeMux()
	NewAccountHandler(accounts, nil, discardLogger()).RegisterRoutes(mux, fakeRequireAccount, Limits{})
	return mux
}

func testAccount() *domain.Account {
	return &domain.Account{
		ID:           uuid.New(),
		Email:        "owner@example.com",
		Name:         "Owner",
		PasswordHash: "$2a$12$secret",
	}
}

func TestAccountHandler_Register(t *testing.T) {
	accounts := &fakeAccounts{account: testAccount()}
	mux := newAccountMux(accounts)

	rec := serve(mux, jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "owner@example.com",
		"password": "Str0ngEnough",
		"name":     "Owner",
	}))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "owner@example.com", accounts.gotParams.Email)
	assert.NotContains(t, rec.Body.String(), "secret")

	view := decodeBody[accountView](t, rec)
	assert.Equal(t, accounts.account.ID, view.ID)
}

func TestAccountHandler_RegisterRejectsUnknownFields(t *testing.T) {
	mux := newAccountMux(&fakeAccounts{account: testAccount()})

	rec := serve(mux, jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]any{
		"email":              "owner@example.com",
		"subscription_id":    "sub_123",
		"subscription_price": "price_premium",
	}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.EINVALID, decodeError(t, rec).Code)
}

func TestAccountHandler_RegisterConflict(t *testing.T) {
	mux := newAccountMux(&fakeAccounts{err: reasonErr(domain.ECONFLICT, domain.ReasonAccountAlreadyExists)})

	rec := serve(mux, jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]string{"email": "a@b.co"}))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, domain.ReasonAccountAlreadyExists, decodeError(t, rec).Message)
}

func TestAccountHandler_Login(t *testing.T) {
	mux := newAccountMux(&fakeAccounts{account: testAccount()})

	rec := serve(mux, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "owner@example.com",
		"password": "Str0ngEnough",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[loginResponse](t, rec)
	assert.Equal(t, "signed-token", resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
}

func TestAccountHandler_LoginInvalidCredentials(t *testing.T) {
	mux := newAccountMux(&fakeAccounts{err: reasonErr(domain.EUNAUTHORIZED, domain.ReasonInvalidCredentials)})

	rec := serve(mux, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "x@y.co", "password": "nope"}))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, domain.ReasonInvalidCredentials, decodeError(t, rec).Message)
}

func TestAccountHandler_Me(t *testing.T) {
	account := testAccount()
	mux := newAccountMux(&fakeAccounts{account: account})

	rec := serve(mux, jsonRequest(t, http.MethodGet, "/api/account", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(mux, asAccount(jsonRequest(t, http.MethodGet, "/api/account", nil), account.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, account.Email, decodeBody[accountView](t, rec).Email)
}

func TestAccountHandler_UpdateProfileScopesToCaller(t *testing.T) {
	account := testAccount()
	accounts := &fakeAccounts{account: account}
	mux := newAccountMux(accounts)

	req := asAccount(jsonRequest(t, http.MethodPatch, "/api/account", map[string]string{"name": "Renamed"}), account.ID)
	rec := serve(mux, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, account.ID, accounts.gotProfile.AccountID)
	assert.Equal(t, "Renamed", decodeBody[accountView](t, rec).Name)
}

func TestAccountHandler_Quota(t *testing.T) {
	account := testAccount()
	mux := newAccountMux(&fakeAccounts{account: account})

	rec := serve(mux, asAccount(jsonRequest(t, http.MethodGet, "/api/account/quota", nil), account.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), string(domain.TierFree))
}

func TestAccountHandler_RecoverPassword(t *testing.T) {
	mux := newAccountMux(&fakeAccounts{})
	rec := serve(mux, jsonRequest(t, http.MethodPost, "/api/auth/recover-password", map[string]string{
		"grant":    "g",
		"password": "N3wPassphrase",
	}))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	mux = newAccountMux(&fakeAccounts{err: reasonErr(domain.EUNAUTHORIZED, domain.ReasonInvalidGrant)})
	rec = serve(mux, jsonRequest(t, http.MethodPost, "/api/auth/recover-password", map[string]string{"grant": "g"}))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, domain.ReasonInvalidGrant, decodeError(t, rec).Message)
}
