package repository

import (
	"context"

	"github.com/google/uuid"
)

const testimonialConfigColumns = `id, account_id, name, format, title_char_limit, message_char_limit,
	expiration_limit, created_at, updated_at`

func scanTestimonialConfig(row interface{ Scan(...interface{}) error }) (TestimonialConfig, error) {
	var i TestimonialConfig
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Name,
		&i.Format,
		&i.TitleCharLimit,
		&i.MessageCharLimit,
		&i.ExpirationLimit,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createTestimonialConfigWithinLimit = `-- name: CreateTestimonialConfigWithinLimit :one
INSERT INTO testimonial_configs (account_id, name, format, title_char_limit, message_char_limit, expiration_limit)
SELECT $1, $2, $3, $4, $5, $6
WHERE (SELECT COUNT(*) FROM testimonial_configs WHERE account_id = $1) < $7
RETURNING ` + testimonialConfigColumns

type CreateTestimonialConfigParams struct {
	AccountID        uuid.UUID
	Name             string
	Format           string
	TitleCharLimit   int32
	MessageCharLimit int32
	ExpirationLimit  int32
	Limit            int64
}

// CreateTestimonialConfigWithinLimit inserts only while the account holds fewer
// than Limit configs. Returns sql.ErrNoRows when the account is full.
func (q *Queries) CreateTestimonialConfigWithinLimit(ctx context.Context, arg CreateTestimonialConfigParams) (TestimonialConfig, error) {
	row := q.db.QueryRowContext(ctx, createTestimonialConfigWithinLimit,
		arg.AccountID,
		arg.Name,
		arg.Format,
		arg.TitleCharLimit,
		arg.MessageCharLimit,
		arg.ExpirationLimit,
		arg.Limit,
	)
	return scanTestimonialConfig(row)
}

const getTestimonialConfig = `-- name: GetTestimonialConfig :one
SELECT ` + testimonialConfigColumns + `
FROM testimonial_configs
WHERE id = $1`

func (q *Queries) GetTestimonialConfig(ctx context.Context, id uuid.UUID) (TestimonialConfig, error) {
	return scanTestimonialConfig(q.db.QueryRowContext(ctx, getTestimonialConfig, id))
}

const getTestimonialConfigByIDAndAccount = `-- name: GetTestimonialConfigByIDAndAccount :one
SELECT ` + testimonialConfigColumns + `
FROM testimonial_configs
WHERE id = $1 AND account_id = $2`

type GetTestimonialConfigByIDAndAccountParams struct {
	ID        uuid.UUID
	AccountID uuid.UUID
}

func (q *Queries) GetTestimonialConfigByIDAndAccount(ctx context.Context, arg GetTestimonialConfigByIDAndAccountParams) (TestimonialConfig, error) {
	return scanTestimonialConfig(q.db.QueryRowContext(ctx, getTestimonialConfigByIDAndAccount, arg.ID, arg.AccountID))
}

const listTestimonialConfigsByAccount = `-- name: ListTestimonialConfigsByAccount :many
SELECT ` + testimonialConfigColumns + `
FROM testimonial_configs
WHERE account_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

type ListTestimonialConfigsByAccountParams struct {
	AccountID uuid.UUID
	Limit     int32
	Offset    int32
}

func (q *Queries) ListTestimonialConfigsByAccount(ctx context.Context, arg ListTestimonialConfigsByAccountParams) ([]TestimonialConfig, error) {
	rows, err := q.db.QueryContext(ctx, listTestimonialConfigsByAccount, arg.AccountID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TestimonialConfig
	for rows.Next() {
		i, err := scanTestimonialConfig(rows)
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

const countTestimonialConfigsByAccount = `-- name: CountTestimonialConfigsByAccount :one
SELECT COUNT(*) FROM testimonial_configs
WHERE account_id = $1`

func (q *Queries) CountTestimonialConfigsByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTestimonialConfigsByAccount, accountID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const updateTestimonialConfig = `-- name: UpdateTestimonialConfig :one
UPDATE testimonial_configs
SET name = $3,
    format = $4,
    title_char_limit = $5,
    message_char_limit = $6,
    expiration_limit = $7,
    updated_at = NOW()
WHERE id = $1 AND account_id = $2
RETURNING ` + testimonialConfigColumns

type UpdateTestimonialConfigParams struct {
	ID               uuid.UUID
	AccountID        uuid.UUID
	Name             string
	Format           string
	TitleCharLimit   int32
	MessageCharLimit int32
	ExpirationLimit  int32
}

func (q *Queries) UpdateTestimonialConfig(ctx context.Context, arg UpdateTestimonialConfigParams) (TestimonialConfig, error) {
	row := q.db.QueryRowContext(ctx, updateTestimonialConfig,
		arg.ID,
		arg.AccountID,
		arg.Name,
		arg.Format,
		arg.TitleCharLimit,
		arg.MessageCharLimit,
		arg.ExpirationLimit,
	)
	return scanTestimonialConfig(row)
}

const deleteTestimonialConfig = `-- name: DeleteTestimonialConfig :execrows
DELETE FROM testimonial_configs
WHERE id = $1 AND account_id = $2`

type DeleteTestimonialConfigParams struct {
	ID        uuid.UUID
	AccountID uuid.UUID
}

func (q *Queries) DeleteTestimonialConfig(ctx context.Context, arg DeleteTestimonialConfigParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTestimonialConfig, arg.ID, arg.AccountID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
