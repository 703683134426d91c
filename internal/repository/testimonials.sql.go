package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Testimonial rows always carry the owning account id from their landing page.
const testimonialSelect = `SELECT t.id, t.landing_page_id, lp.account_id, t.status, t.customer_name, t.title,
	t.message, t.stars, t.image, t.created_at, t.updated_at
FROM testimonials t
JOIN landing_pages lp ON lp.id = t.landing_page_id`

func scanTestimonial(row interface{ Scan(...interface{}) error }) (Testimonial, error) {
	var i Testimonial
	err := row.Scan(
		&i.ID,
		&i.LandingPageID,
		&i.AccountID,
		&i.Status,
		&i.CustomerName,
		&i.Title,
		&i.Message,
		&i.Stars,
		&i.Image,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createTestimonialWithinLimit = `-- name: CreateTestimonialWithinLimit :one
WITH t AS (
    INSERT INTO testimonials (landing_page_id, status)
    SELECT $1, 'PENDING'
    WHERE (SELECT COUNT(*) FROM testimonials WHERE landing_page_id = $1) < $2
    RETURNING *
)
SELECT t.id, t.landing_page_id, lp.account_id, t.status, t.customer_name, t.title,
	t.message, t.stars, t.image, t.created_at, t.updated_at
FROM t
JOIN landing_pages lp ON lp.id = t.landing_page_id`

type CreateTestimonialParams struct {
	LandingPageID uuid.UUID
	Limit         int64
}

// CreateTestimonialWithinLimit inserts a PENDING testimonial only while the
// landing page holds fewer than Limit. Returns sql.ErrNoRows when it is full.
func (q *Queries) CreateTestimonialWithinLimit(ctx context.Context, arg CreateTestimonialParams) (Testimonial, error) {
	return scanTestimonial(q.db.QueryRowContext(ctx, createTestimonialWithinLimit, arg.LandingPageID, arg.Limit))
}

const getTestimonial = `-- name: GetTestimonial :one
` + testimonialSelect + `
WHERE t.id = $1`

func (q *Queries) GetTestimonial(ctx context.Context, id uuid.UUID) (Testimonial, error) {
	return scanTestimonial(q.db.QueryRowContext(ctx, getTestimonial, id))
}

const getTestimonialByIDAndAccount = `-- name: GetTestimonialByIDAndAccount :one
` + testimonialSelect + `
WHERE t.id = $1 AND lp.account_id = $2`

type GetTestimonialByIDAndAccountParams struct {
	ID        uuid.UUID
	AccountID uuid.UUID
}

func (q *Queries) GetTestimonialByIDAndAccount(ctx context.Context, arg GetTestimonialByIDAndAccountParams) (Testimonial, error) {
	return scanTestimonial(q.db.QueryRowContext(ctx, getTestimonialByIDAndAccount, arg.ID, arg.AccountID))
}

const countTestimonialsByLandingPage = `-- name: CountTestimonialsByLandingPage :one
SELECT COUNT(*) FROM testimonials
WHERE landing_page_id = $1`

func (q *Queries) CountTestimonialsByLandingPage(ctx context.Context, landingPageID uuid.UUID) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTestimonialsByLandingPage, landingPageID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countTestimonialsByAccount = `-- name: CountTestimonialsByAccount :one
SELECT COUNT(*) FROM testimonials t
JOIN landing_pages lp ON lp.id = t.landing_page_id
WHERE lp.account_id = $1`

func (q *Queries) CountTestimonialsByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTestimonialsByAccount, accountID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const completeTestimonial = `-- name: CompleteTestimonial :one
WITH t AS (
    UPDATE testimonials
    SET status = $2,
        customer_name = $3,
        title = $4,
        message = $5,
        stars = $6,
        image = $7,
        updated_at = NOW()
    WHERE id = $1 AND status = 'PENDING'
    RETURNING *
)
SELECT t.id, t.landing_page_id, lp.account_id, t.status, t.customer_name, t.title,
	t.message, t.stars, t.image, t.created_at, t.updated_at
FROM t
JOIN landing_pages lp ON lp.id = t.landing_page_id`

type CompleteTestimonialParams struct {
	ID           uuid.UUID
	Status       string
	CustomerName sql.NullString
	Title        sql.NullString
	Message      sql.NullString
	Stars        sql.NullInt16
	Image        sql.NullString
}

// CompleteTestimonial moves a PENDING testimonial to its final status.
// Returns sql.ErrNoRows if the testimonial is no longer PENDING.
func (q *Queries) CompleteTestimonial(ctx context.Context, arg CompleteTestimonialParams) (Testimonial, error) {
	row := q.db.QueryRowContext(ctx, completeTestimonial,
		arg.ID,
		arg.Status,
		arg.CustomerName,
		arg.Title,
		arg.Message,
		arg.Stars,
		arg.Image,
	)
	return scanTestimonial(row)
}

const updateTestimonial = `-- name: UpdateTestimonial :one
WITH t AS (
    UPDATE testimonials
    SET status = COALESCE($2, status),
        customer_name = COALESCE($3, customer_name),
        title = COALESCE($4, title),
        message = COALESCE($5, message),
        stars = COALESCE($6, stars),
        image = COALESCE($7, image),
        updated_at = NOW()
    WHERE testimonials.id = $1
      AND testimonials.landing_page_id IN (SELECT id FROM landing_pages WHERE account_id = $8)
    RETURNING *
)
SELECT t.id, t.landing_page_id, lp.account_id, t.status, t.customer_name, t.title,
	t.message, t.stars, t.image, t.created_at, t.updated_at
FROM t
JOIN landing_pages lp ON lp.id = t.landing_page_id`

// UpdateTestimonialParams leaves any invalid (NULL) field unchanged.
type UpdateTestimonialParams struct {
	ID           uuid.UUID
	Status       sql.NullString
	CustomerName sql.NullString
	Title        sql.NullString
	Message      sql.NullString
	Stars        sql.NullInt16
	Image        sql.NullString
	AccountID    uuid.UUID
}

func (q *Queries) UpdateTestimonial(ctx context.Context, arg UpdateTestimonialParams) (Testimonial, error) {
	row := q.db.QueryRowContext(ctx, updateTestimonial,
		arg.ID,
		arg.Status,
		arg.CustomerName,
		arg.Title,
		arg.Message,
		arg.Stars,
		arg.Image,
		arg.AccountID,
	)
	return scanTestimonial(row)
}

const testimonialFilter = `
WHERE lp.account_id = $1
  AND ($2::uuid IS NULL OR t.landing_page_id = $2)
  AND ($3::text IS NULL OR t.status = $3)
  AND ($4::text IS NULL OR t.customer_name ILIKE '%' || $4 || '%')
  AND ($5::smallint IS NULL OR t.stars = $5)`

const listTestimonials = `-- name: ListTestimonials :many
` + testimonialSelect + testimonialFilter + `
ORDER BY t.created_at DESC
LIMIT $6 OFFSET $7`

type ListTestimonialsParams struct {
	AccountID     uuid.UUID
	LandingPageID uuid.NullUUID
	Status        sql.NullString
	CustomerName  sql.NullString
	Stars         sql.NullInt16
	Limit         int32
	Offset        int32
}

func (q *Queries) ListTestimonials(ctx context.Context, arg ListTestimonialsParams) ([]Testimonial, error) {
	rows, err := q.db.QueryContext(ctx, listTestimonials,
		arg.AccountID,
		arg.LandingPageID,
		arg.Status,
		arg.CustomerName,
		arg.Stars,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Testimonial
	for rows.Next() {
		i, err := scanTestimonial(rows)
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

const countFilteredTestimonials = `-- name: CountFilteredTestimonials :one
SELECT COUNT(*)
FROM testimonials t
JOIN landing_pages lp ON lp.id = t.landing_page_id` + testimonialFilter

type CountFilteredTestimonialsParams struct {
	AccountID     uuid.UUID
	LandingPageID uuid.NullUUID
	Status        sql.NullString
	CustomerName  sql.NullString
	Stars         sql.NullInt16
}

func (q *Queries) CountFilteredTestimonials(ctx context.Context, arg CountFilteredTestimonialsParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countFilteredTestimonials,
		arg.AccountID,
		arg.LandingPageID,
		arg.Status,
		arg.CustomerName,
		arg.Stars,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteTestimonials = `-- name: DeleteTestimonials :execrows
DELETE FROM testimonials
WHERE id = ANY($2::uuid[])
  AND landing_page_id IN (SELECT id FROM landing_pages WHERE account_id = $1)`

type DeleteTestimonialsParams struct {
	AccountID uuid.UUID
	IDs       []string
}

func (q *Queries) DeleteTestimonials(ctx context.Context, arg DeleteTestimonialsParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTestimonials, arg.AccountID, arg.IDs)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
