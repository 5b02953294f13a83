package notifications

import "context"

type SendConfirmationInput struct {
	Name  string
	Link  string
	Code  int
	Email string
}

// Notifier delivers the account confirmation email. Callers treat delivery as
// fire-and-forget; retries live in the job queue, not here.
type Notifier interface {
	SendConfirmation(ctx context.Context, input SendConfirmationInput) error
}
