package mail

import (
	"context"
	"log/slog"

	"atelier/internal/domain/service"
)

// logSender writes messages to the log instead of sending them. The body
// contains the raw verification link, so this sender must never run against
// real user traffic.
type logSender struct {
	logger *slog.Logger
}

// NewLogSender creates a sender that logs instead of delivering.
func NewLogSender(logger *slog.Logger) service.MailSender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(_ context.Context, recipient, subject, body string) error {
	s.logger.Info("Outbound email (log sender)",
		slog.String("recipient", recipient),
		slog.String("subject", subject),
		slog.String("body", body),
	)

	return nil
}
