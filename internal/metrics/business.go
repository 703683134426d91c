package metrics

// QuotaRejected records a creation refused by a quota ceiling.
func QuotaRejected(kind, tier string) {
	QuotaRejectionsTotal.WithLabelValues(kind, tier).Inc()
}

// TestimonialCompleted records an accepted submission by moderation status.
func TestimonialCompleted(status string) {
	TestimonialsCompleted.WithLabelValues(status).Inc()
}

// ClassifierCalled records a sentiment classifier outcome.
func ClassifierCalled(err error) {
	if err != nil {
		ClassifierCalls.WithLabelValues("error").Inc()
		return
	}
	ClassifierCalls.WithLabelValues("success").Inc()
}

// VerificationIssued records a stored verification code.
func VerificationIssued(typ string) {
	VerificationCodesIssued.WithLabelValues(typ).Inc()
}

// WebhookHandled records the outcome of one billing webhook delivery.
func WebhookHandled(outcome string) {
	WebhookEventsTotal.WithLabelValues(outcome).Inc()
}

// EmailSent records an email delivery attempt.
func EmailSent(provider string, err error) {
	status := "sent"
	if err != nil {
		status = "error"
	}
	EmailsSent.WithLabelValues(provider, status).Inc()
}
