package worker

import (
	"context"
	"errors"
	"fmt"
)

// JobHandler executes one job type. Type must match jobs.job_type; Handle
// receives the stored JSON payload.
type JobHandler interface {
	Type() string
	Handle(ctx context.Context, payload []byte) error
}

// HandlerFunc adapts a function to JobHandler for the given job type.
func HandlerFunc(jobType string, fn func(ctx context.Context, payload []byte) error) JobHandler {
	return handlerFunc{jobType: jobType, fn: fn}
}

type handlerFunc struct {
	jobType string
	fn      func(ctx context.Context, payload []byte) error
}

func (h handlerFunc) Type() string { return h.jobType }

func (h handlerFunc) Handle(ctx context.Context, payload []byte) error { return h.fn(ctx, payload) }

// PermanentError fails a job without further attempts, e.g. a payload that
// can never decode or a recipient the provider rejects outright.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// NewPermanentError marks err as not worth retrying.
func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// Permanentf is NewPermanentError(fmt.Errorf(format, args...)).
func Permanentf(format string, args ...any) error {
	return &PermanentError{Err: fmt.Errorf(format, args...)}
}

// IsPermanent reports whether err or anything it wraps is a PermanentError.
func IsPermanent(err error) bool {
	var permErr *PermanentError
	return errors.As(err, &permErr)
}
