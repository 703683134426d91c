package repository

import (
	"context"
	"time"
)

const getVerificationRequest = `-- name: GetVerificationRequest :one
SELECT identifier, type, token, expires_at, created_at
FROM verification_requests
WHERE identifier = $1 AND type = $2`

type GetVerificationRequestParams struct {
	Identifier string
	Type       string
}

func (q *Queries) GetVerificationRequest(ctx context.Context, arg GetVerificationRequestParams) (VerificationRequest, error) {
	row := q.db.QueryRowContext(ctx, getVerificationRequest, arg.Identifier, arg.Type)
	var i VerificationRequest
	err := row.Scan(
		&i.Identifier,
		&i.Type,
		&i.Token,
		&i.ExpiresAt,
		&i.CreatedAt,
	)
	return i, err
}

const issueVerificationRequest = `-- name: IssueVerificationRequest :one
INSERT INTO verification_requests (identifier, type, token, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (identifier, type) DO UPDATE
SET token = EXCLUDED.token,
    expires_at = EXCLUDED.expires_at,
    created_at = EXCLUDED.created_at
WHERE verification_requests.expires_at < EXCLUDED.created_at
RETURNING identifier, type, token, expires_at, created_at`

type IssueVerificationRequestParams struct {
	Identifier string
	Type       string
	Token      string
	ExpiresAt  time.Time
	Now        time.Time
}

// IssueVerificationRequest inserts a request, or replaces one that expired
// before Now. Returns sql.ErrNoRows while an existing request is still live.
func (q *Queries) IssueVerificationRequest(ctx context.Context, arg IssueVerificationRequestParams) (VerificationRequest, error) {
	row := q.db.QueryRowContext(ctx, issueVerificationRequest,
		arg.Identifier,
		arg.Type,
		arg.Token,
		arg.ExpiresAt,
		arg.Now,
	)
	var i VerificationRequest
	err := row.Scan(
		&i.Identifier,
		&i.Type,
		&i.Token,
		&i.ExpiresAt,
		&i.CreatedAt,
	)
	return i, err
}

const deleteVerificationRequest = `-- name: DeleteVerificationRequest :exec
DELETE FROM verification_requests
WHERE identifier = $1 AND type = $2`

type DeleteVerificationRequestParams struct {
	Identifier string
	Type       string
}

func (q *Queries) DeleteVerificationRequest(ctx context.Context, arg DeleteVerificationRequestParams) error {
	_, err := q.db.ExecContext(ctx, deleteVerificationRequest, arg.Identifier, arg.Type)
	return err
}
