package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrLimitReached is returned by quota-gated inserts when the scope is full.
	ErrLimitReached = errors.New("repository: scope is at its limit")

	// ErrNotPending is returned when completing a testimonial that already left PENDING.
	ErrNotPending = errors.New("repository: testimonial is not pending")

	// ErrVerificationLive is returned when an unexpired verification request already exists.
	ErrVerificationLive = errors.New("repository: verification request still live")

	// ErrAlreadyVerified is returned when marking an already verified account.
	ErrAlreadyVerified = errors.New("repository: email already verified")

	// ErrDuplicate wraps a unique constraint violation.
	ErrDuplicate = errors.New("repository: duplicate key")
)

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const foreignKeyViolation = "23503"

// IsForeignKeyViolation reports whether err is a Postgres foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
