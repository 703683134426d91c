package repository

import (
	"context"

	"github.com/google/uuid"
)

const landingPageColumns = `id, account_id, testimonial_config_id, name, link, created_at, updated_at`

func scanLandingPage(row interface{ Scan(...interface{}) error }) (LandingPage, error) {
	var i LandingPage
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.TestimonialConfigID,
		&i.Name,
		&i.Link,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createLandingPageWithinLimit = `-- name: CreateLandingPageWithinLimit :one
INSERT INTO landing_pages (account_id, testimonial_config_id, name, link)
SELECT $1, $2, $3, $4
WHERE (SELECT COUNT(*) FROM landing_pages WHERE account_id = $1) < $5
RETURNING ` + landingPageColumns

type CreateLandingPageParams struct {
	AccountID           uuid.UUID
	TestimonialConfigID uuid.UUID
	Name                string
	Link                string
	Limit               int64
}

// CreateLandingPageWithinLimit inserts only while the account holds fewer than
// Limit landing pages. Returns sql.ErrNoRows when the account is full.
func (q *Queries) CreateLandingPageWithinLimit(ctx context.Context, arg CreateLandingPageParams) (LandingPage, error) {
	row := q.db.QueryRowContext(ctx, createLandingPageWithinLimit,
		arg.AccountID,
		arg.TestimonialConfigID,
		arg.Name,
		arg.Link,
		arg.Limit,
	)
	return scanLandingPage(row)
}

const getLandingPage = `-- name: GetLandingPage :one
SELECT ` + landingPageColumns + `
FROM landing_pages
WHERE id = $1`

func (q *Queries) GetLandingPage(ctx context.Context, id uuid.UUID) (LandingPage, error) {
	return scanLandingPage(q.db.QueryRowContext(ctx, getLandingPage, id))
}

const getLandingPageForUpdate = `-- name: GetLandingPageForUpdate :one
SELECT ` + landingPageColumns + `
FROM landing_pages
WHERE id = $1
FOR UPDATE`

// GetLandingPageForUpdate locks the landing page row. Call within a transaction.
func (q *Queries) GetLandingPageForUpdate(ctx context.Context, id uuid.UUID) (LandingPage, error) {
	return scanLandingPage(q.db.QueryRowContext(ctx, getLandingPageForUpdate, id))
}

const getLandingPageByIDAndAccount = `-- name: GetLandingPageByIDAndAccount :one
SELECT ` + landingPageColumns + `
FROM landing_pages
WHERE id = $1 AND account_id = $2`

type GetLandingPageByIDAndAccountParams struct {
	ID        uuid.UUID
	AccountID uuid.UUID
}

func (q *Queries) GetLandingPageByIDAndAccount(ctx context.Context, arg GetLandingPageByIDAndAccountParams) (LandingPage, error) {
	return scanLandingPage(q.db.QueryRowContext(ctx, getLandingPageByIDAndAccount, arg.ID, arg.AccountID))
}

const listLandingPagesByAccount = `-- name: ListLandingPagesByAccount :many
SELECT ` + landingPageColumns + `
FROM landing_pages
WHERE account_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

type ListLandingPagesByAccountParams struct {
	AccountID uuid.UUID
	Limit     int32
	Offset    int32
}

func (q *Queries) ListLandingPagesByAccount(ctx context.Context, arg ListLandingPagesByAccountParams) ([]LandingPage, error) {
	rows, err := q.db.QueryContext(ctx, listLandingPagesByAccount, arg.AccountID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LandingPage
	for rows.Next() {
		i, err := scanLandingPage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countLandingPagesByAccount = `-- name: CountLandingPagesByAccount :one
SELECT COUNT(*) FROM landing_pages
WHERE account_id = $1`

func (q *Queries) CountLandingPagesByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	row := q.db.QueryRowContext(ctx, countLandingPagesByAccount, accountID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteLandingPages = `-- name: DeleteLandingPages :execrows
DELETE FROM landing_pages
WHERE account_id = $1 AND id = ANY($2::uuid[])`

type DeleteLandingPagesParams struct {
	AccountID uuid.UUID
	IDs       []string
}

// DeleteLandingPages removes the listed pages owned by the account. Their
// testimonials cascade.
func (q *Queries) DeleteLandingPages(ctx context.Context, arg DeleteLandingPagesParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteLandingPages, arg.AccountID, arg.IDs)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
