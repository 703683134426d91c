package email

import (
	"context"
	"fmt"

	"github.com/DukeRupert/vouch/internal/worker"
)

// Queue enqueues send_email jobs. The worker delivers them with retries.
type Queue struct {
	jobs worker.Enqueuer
}

func NewQueue(jobs worker.Enqueuer) *Queue {
	return &Queue{jobs: jobs}
}

// Enqueue schedules delivery of a plain text message to a single recipient.
func (q *Queue) Enqueue(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("enqueue email: recipient is required")
	}
	_, err := worker.EnqueueSendEmail(ctx, q.jobs, worker.SendEmailPayload{
		To:       to,
		Subject:  subject,
		TextBody: body,
	})
	return err
}
