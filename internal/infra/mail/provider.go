// Package mail implements the outbound verification email channel.
package mail

import (
	"log/slog"
	"net/http"
	"time"

	"go.uber.org/fx"

	"atelier/config"
	"atelier/internal/domain/constants"
	"atelier/internal/domain/service"
	"atelier/internal/errors"
)

// Params holds dependencies for MailSender, injected by Fx
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewMailSender creates a MailSender based on configuration
func NewMailSender(params Params) (service.MailSender, error) {
	cfg := params.Config.Mail
	logger := params.Logger

	// Without mail configuration the service still runs; verification
	// links only show up in the logs. Useful for local development.
	if cfg == nil || cfg.Provider == "" || cfg.Provider == constants.MailProviderLog {
		logger.Info("Mail not configured, using log sender")

		return NewLogSender(logger), nil
	}

	switch cfg.Provider {
	case constants.MailProviderMailgun:
		if cfg.Mailgun == nil || cfg.Mailgun.Domain == "" {
			return nil, errors.New("mailgun domain is required for mailgun provider")
		}
		logger.Info("Using Mailgun sender",
			slog.String("domain", cfg.Mailgun.Domain),
		)

		client := &http.Client{Timeout: 10 * time.Second}

		return NewMailgunSender(client, cfg.From, *cfg.Mailgun), nil

	default:
		return nil, errors.Errorf("unknown mail provider: %s", cfg.Provider)
	}
}
