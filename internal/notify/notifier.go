// Package notify orchestrates a deploy notification from configuration to
// provider dispatch.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deploygun/deploygun/internal/config"
	"github.com/deploygun/deploygun/internal/email"
	"github.com/deploygun/deploygun/internal/logger"
	"github.com/deploygun/deploygun/internal/recipient"
	"github.com/deploygun/deploygun/internal/report"
	"github.com/deploygun/deploygun/internal/revlog"
)

// Notifier assembles and dispatches one deploy notification.
type Notifier struct {
	cfg      *config.Config
	sender   email.Sender
	source   *revlog.Source
	renderer *report.Renderer
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new Notifier.
func New(cfg *config.Config, sender email.Sender, source *revlog.Source, renderer *report.Renderer, log *logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{
		cfg:      cfg,
		sender:   sender,
		source:   source,
		renderer: renderer,
		log:      log.WithComponent("notify"),
		now:      time.Now,
	}
}

// Notify validates the configuration, builds the deploy report and sends
// it through the configured provider. A disabled configuration is a
// silent no-op. Validation runs before any network call; a send failure
// surfaces to the caller without retries.
func (n *Notifier) Notify(ctx context.Context) error {
	if n.cfg.Disabled {
		n.log.Info().Msg("notifications disabled, skipping send")
		return nil
	}

	if err := n.cfg.Validate(); err != nil {
		return err
	}

	msg, err := n.build(ctx)
	if err != nil {
		return err
	}

	// Tag the message so provider logs can be tied back to this run
	id := uuid.New().String()
	msg.Fields["v:deploygun-id"] = id

	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send deploy notification: %w", err)
	}

	n.log.Info().
		Str("notification_id", id).
		Str("provider", n.cfg.Provider).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("deploy notification sent")

	return nil
}

// Preview assembles the notification without validating provider
// credentials and without sending anything. Used for dry runs and
// template work.
func (n *Notifier) Preview(ctx context.Context) (text, html string, err error) {
	msg, err := n.build(ctx)
	if err != nil {
		return "", "", err
	}
	return msg.Text, msg.HTML, nil
}

// build runs everything up to (but not including) the provider call.
func (n *Notifier) build(ctx context.Context) (email.Message, error) {
	var msg email.Message

	// Normalize recipient headers
	domain := n.cfg.RecipientDomain()
	to, err := recipient.Normalize(n.cfg.Message.Recipients, domain)
	if err != nil {
		return msg, err
	}
	cc, err := recipient.Normalize(n.cfg.Message.CC, domain)
	if err != nil {
		return msg, err
	}
	bcc, err := recipient.Normalize(n.cfg.Message.BCC, domain)
	if err != nil {
		return msg, err
	}

	// Extract the revision log, best-effort
	entries := n.source.Entries(ctx, n.cfg.Deploy.PreviousRevision, n.cfg.Deploy.CurrentRevision)

	// Render both bodies
	rep := report.Build(n.cfg, entries, n.now())
	text, err := n.renderer.Text(rep, n.cfg.Templates.TextPath)
	if err != nil {
		return msg, err
	}
	html, err := n.renderer.HTML(rep, n.cfg.Templates.HTMLPath)
	if err != nil {
		return msg, err
	}

	msg = email.Message{
		From:    n.cfg.Message.From,
		To:      to,
		CC:      cc,
		BCC:     bcc,
		Subject: rep.Subject,
		Text:    text,
		HTML:    html,
		Fields:  cloneFields(n.cfg.Message.Fields),
	}
	return msg, nil
}

// cloneFields copies the configured pass-through fields so dispatch never
// mutates the loaded configuration.
func cloneFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
