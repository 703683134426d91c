package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const accountColumns = `id, email, password_hash, name, company_name, image, stripe_customer_id,
	stripe_subscription_id, stripe_price_id, stripe_subscription_status, email_verified_at, created_at, updated_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (Account, error) {
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.Name,
		&i.CompanyName,
		&i.Image,
		&i.StripeCustomerID,
		&i.StripeSubscriptionID,
		&i.StripePriceID,
		&i.StripeSubscriptionStatus,
		&i.EmailVerifiedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createAccount = `-- name: CreateAccount :one
INSERT INTO accounts (email, password_hash, name, company_name)
VALUES ($1, $2, $3, $4)
RETURNING ` + accountColumns

type CreateAccountParams struct {
	Email        string
	PasswordHash string
	Name         string
	CompanyName  sql.NullString
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	row := q.db.QueryRowContext(ctx, createAccount,
		arg.Email,
		arg.PasswordHash,
		arg.Name,
		arg.CompanyName,
	)
	return scanAccount(row)
}

const getAccountByID = `-- name: GetAccountByID :one
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1`

func (q *Queries) GetAccountByID(ctx context.Context, id uuid.UUID) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByID, id))
}

const getAccountByIDForUpdate = `-- name: GetAccountByIDForUpdate :one
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1
FOR UPDATE`

// GetAccountByIDForUpdate locks the account row. Call within a transaction.
func (q *Queries) GetAccountByIDForUpdate(ctx context.Context, id uuid.UUID) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByIDForUpdate, id))
}

const getAccountByEmail = `-- name: GetAccountByEmail :one
SELECT ` + accountColumns + `
FROM accounts
WHERE lower(email) = lower($1)`

func (q *Queries) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByEmail, email))
}

const getAccountByStripeInfo = `-- name: GetAccountByStripeInfo :one
SELECT ` + accountColumns + `
FROM accounts
WHERE stripe_customer_id = $1 OR stripe_subscription_id = $2
ORDER BY (stripe_customer_id = $1) IS TRUE DESC
LIMIT 1`

type GetAccountByStripeInfoParams struct {
	CustomerID     string
	SubscriptionID string
}

// GetAccountByStripeInfo matches either the cached customer id or subscription id,
// preferring a customer id match.
func (q *Queries) GetAccountByStripeInfo(ctx context.Context, arg GetAccountByStripeInfoParams) (Account, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByStripeInfo, arg.CustomerID, arg.SubscriptionID))
}

const updateAccountProfile = `-- name: UpdateAccountProfile :one
UPDATE accounts
SET name = $2,
    company_name = $3,
    image = $4,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + accountColumns

type UpdateAccountProfileParams struct {
	ID          uuid.UUID
	Name        string
	CompanyName sql.NullString
	Image       sql.NullString
}

func (q *Queries) UpdateAccountProfile(ctx context.Context, arg UpdateAccountProfileParams) (Account, error) {
	row := q.db.QueryRowContext(ctx, updateAccountProfile,
		arg.ID,
		arg.Name,
		arg.CompanyName,
		arg.Image,
	)
	return scanAccount(row)
}

const updateAccountPassword = `-- name: UpdateAccountPassword :exec
UPDATE accounts
SET password_hash = $2,
    updated_at = NOW()
WHERE id = $1`

type UpdateAccountPasswordParams struct {
	ID           uuid.UUID
	PasswordHash string
}

func (q *Queries) UpdateAccountPassword(ctx context.Context, arg UpdateAccountPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateAccountPassword, arg.ID, arg.PasswordHash)
	return err
}

const updateAccountBilling = `-- name: UpdateAccountBilling :one
UPDATE accounts
SET stripe_customer_id = $2,
    stripe_subscription_id = $3,
    stripe_price_id = $4,
    stripe_subscription_status = $5,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + accountColumns

type UpdateAccountBillingParams struct {
	ID                       uuid.UUID
	StripeCustomerID         sql.NullString
	StripeSubscriptionID     sql.NullString
	StripePriceID            sql.NullString
	StripeSubscriptionStatus sql.NullString
}

func (q *Queries) UpdateAccountBilling(ctx context.Context, arg UpdateAccountBillingParams) (Account, error) {
	row := q.db.QueryRowContext(ctx, updateAccountBilling,
		arg.ID,
		arg.StripeCustomerID,
		arg.StripeSubscriptionID,
		arg.StripePriceID,
		arg.StripeSubscriptionStatus,
	)
	return scanAccount(row)
}

const setAccountEmailVerified = `-- name: SetAccountEmailVerified :exec
UPDATE accounts
SET email_verified_at = $2,
    updated_at = NOW()
WHERE id = $1`

type SetAccountEmailVerifiedParams struct {
	ID              uuid.UUID
	EmailVerifiedAt sql.NullTime
}

func (q *Queries) SetAccountEmailVerified(ctx context.Context, arg SetAccountEmailVerifiedParams) error {
	_, err := q.db.ExecContext(ctx, setAccountEmailVerified, arg.ID, arg.EmailVerifiedAt)
	return err
}
