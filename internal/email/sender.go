package email

import (
	"context"
	"fmt"

	"github.com/deploygun/deploygun/internal/config"
	"github.com/deploygun/deploygun/internal/logger"
)

// Sender is the interface all notification providers implement.
// This abstraction allows swapping providers (Mailgun, SMTP relay, Gmail)
// without changing the dispatch logic.
type Sender interface {
	// Send delivers one assembled notification.
	Send(ctx context.Context, msg Message) error
}

// Message is a fully assembled deploy notification. Recipient fields hold
// normalized, comma-joined header values.
type Message struct {
	From    string
	To      string
	CC      string
	BCC     string
	Subject string
	Text    string // plain-text body
	HTML    string // HTML body

	// Fields are extra form fields passed through to the provider untouched,
	// e.g. Mailgun "o:tag" or "h:Reply-To" keys. Providers that cannot
	// express them drop them with a debug log.
	Fields map[string]string
}

// NewSender builds the configured provider.
func NewSender(ctx context.Context, cfg *config.Config, log *logger.Logger) (Sender, error) {
	switch cfg.Provider {
	case config.ProviderMailgun:
		return NewMailgunSender(cfg.Mailgun, log), nil
	case config.ProviderSMTP:
		return NewSMTPSender(cfg.SMTP, log)
	case config.ProviderGmail:
		return NewGmailSender(ctx, cfg.Gmail, cfg.Message.From, log)
	default:
		return nil, fmt.Errorf("unknown email provider: %q", cfg.Provider)
	}
}
