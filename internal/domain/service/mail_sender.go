package service

import "context"

// MailSender delivers the verification email. It is a fire-and-forget side
// channel: delivery failures are logged, never propagated to the caller
// that created the request.
type MailSender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
