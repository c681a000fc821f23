package mail

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"atelier/config"
	"atelier/internal/domain/service"
	"atelier/internal/errors"
)

// mailgunSender sends email through the Mailgun HTTP API. The official Go
// client pulls in a large dependency tree for what is a single multipart
// POST, so the request is built directly.
type mailgunSender struct {
	client *http.Client
	from   string
	cfg    config.MailgunConfig
}

// NewMailgunSender creates a Mailgun-backed sender.
func NewMailgunSender(client *http.Client, from string, cfg config.MailgunConfig) service.MailSender {
	return &mailgunSender{
		client: client,
		from:   from,
		cfg:    cfg,
	}
}

// Send delivers one message through the Mailgun messages endpoint.
func (s *mailgunSender) Send(ctx context.Context, recipient, subject, body string) error {
	fields := map[string]io.Reader{
		"from":    strings.NewReader(s.from),
		"to":      strings.NewReader(recipient),
		"subject": strings.NewReader(subject),
		"text":    strings.NewReader(body),
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, value := range fields {
		ff, err := w.CreateFormField(field)
		if err != nil {
			return errors.Wrap(err, "failed to create form field")
		}
		if _, err := io.Copy(ff, value); err != nil {
			return errors.Wrap(err, "failed to write form field")
		}
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize form")
	}

	reqURL := "https://" + s.cfg.APIHost + "/v3/" + s.cfg.Domain + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Content-Type", w.FormDataContentType())
	req.SetBasicAuth(s.cfg.Username, s.cfg.Password)

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("mailgun returned status %d", resp.StatusCode)
	}

	return nil
}
