package email

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/deploygun/deploygun/internal/config"
	"github.com/deploygun/deploygun/internal/logger"
)

// MailgunSender posts messages to the Mailgun messages API. The message is
// sent as a single form-encoded POST; extra Fields entries go into the form
// verbatim, so Mailgun options ("o:tag"), custom headers ("h:Reply-To") and
// variables ("v:deploy-id") all work without client changes.
type MailgunSender struct {
	cfg        config.MailgunConfig
	log        *logger.Logger
	httpClient *http.Client
}

// NewMailgunSender creates a new MailgunSender.
func NewMailgunSender(cfg config.MailgunConfig, log *logger.Logger) *MailgunSender {
	if log == nil {
		log = logger.Nop()
	}
	return &MailgunSender{
		cfg: cfg,
		log: log.WithComponent("mailgun"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Send posts the message form to /v2/<domain>/messages. A non-2xx response
// is an error; there is no retry.
func (m *MailgunSender) Send(ctx context.Context, msg Message) error {
	form := url.Values{}
	form.Set("from", msg.From)
	form.Set("to", msg.To)
	form.Set("subject", msg.Subject)
	if msg.CC != "" {
		form.Set("cc", msg.CC)
	}
	if msg.BCC != "" {
		form.Set("bcc", msg.BCC)
	}
	if msg.Text != "" {
		form.Set("text", msg.Text)
	}
	if msg.HTML != "" {
		form.Set("html", msg.HTML)
	}
	for k, v := range msg.Fields {
		form.Set(k, v)
	}

	endpoint := m.cfg.MessagesURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	// Mailgun uses Basic Auth with "api" as username
	req.SetBasicAuth("api", m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	m.log.Debug().Str("to", msg.To).Msg("message accepted")
	return nil
}
