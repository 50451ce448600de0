// Package deploygun embeds deploy notifications in Go tooling. It wraps
// the pipeline the deploygun CLI runs: load configuration, collect the
// revision log, render the report and hand it to a delivery provider.
package deploygun

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/deploygun/deploygun/internal/config"
	"github.com/deploygun/deploygun/internal/email"
	"github.com/deploygun/deploygun/internal/logger"
	"github.com/deploygun/deploygun/internal/notify"
	"github.com/deploygun/deploygun/internal/recipient"
	"github.com/deploygun/deploygun/internal/report"
	"github.com/deploygun/deploygun/internal/revlog"
)

// Option customizes a Client.
type Option func(*Client)

// WithLogger routes the client's logs through zl. By default the client
// is silent.
func WithLogger(zl zerolog.Logger) Option {
	return func(c *Client) {
		c.log = &logger.Logger{Logger: zl}
	}
}

// WithSender replaces the provider selected by the configuration, e.g.
// to capture messages in tests.
func WithSender(s Sender) Option {
	return func(c *Client) {
		c.sender = s
	}
}

// Client sends deploy notifications. The revision log is collected once
// and reused for the lifetime of the client.
type Client struct {
	cfg      *config.Config
	log      *logger.Logger
	source   *revlog.Source
	renderer *report.Renderer

	sender     email.Sender
	senderOnce sync.Once
	senderErr  error
}

// New creates a client for the given configuration. Zero values fall
// back to the same defaults the deploygun CLI applies. Provider
// credentials are not touched until the first Notify call.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	applyDefaults(cfg)
	return newClient(cfg, opts...), nil
}

// Load builds a client from a configuration file and the environment,
// using the same search path as the deploygun CLI. An empty path
// searches the default locations.
func Load(path string, opts ...Option) (*Client, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("deploygun: %w", err)
	}
	return newClient(cfg, opts...), nil
}

func newClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		cfg:      cfg,
		log:      logger.Nop(),
		renderer: report.NewRenderer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.source = revlog.New(cfg.Deploy.RepoPath, c.log)
	return c
}

// Notify validates the configuration, assembles the deploy report and
// sends it through the configured provider. A disabled configuration
// returns nil without validating or sending anything.
func (c *Client) Notify(ctx context.Context) error {
	if c.cfg.Disabled {
		c.log.Info().Msg("notifications disabled, skipping send")
		return nil
	}

	sender, err := c.ensureSender(ctx)
	if err != nil {
		return fmt.Errorf("deploygun: %w", err)
	}

	n := notify.New(c.cfg, sender, c.source, c.renderer, c.log)
	if err := n.Notify(ctx); err != nil {
		return fmt.Errorf("deploygun: %w", err)
	}
	return nil
}

// Preview renders the text and HTML notification bodies without
// validating provider credentials or sending anything.
func (c *Client) Preview(ctx context.Context) (text, html string, err error) {
	n := notify.New(c.cfg, nil, c.source, c.renderer, c.log)
	text, html, err = n.Preview(ctx)
	if err != nil {
		return "", "", fmt.Errorf("deploygun: %w", err)
	}
	return text, html, nil
}

// Check validates the configuration and the recipient lists the way a
// send would, without touching the network.
func (c *Client) Check() error {
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("deploygun: %w", err)
	}

	domain := c.cfg.RecipientDomain()
	for _, list := range [][]string{c.cfg.Message.Recipients, c.cfg.Message.CC, c.cfg.Message.BCC} {
		if _, err := recipient.Normalize(list, domain); err != nil {
			return fmt.Errorf("deploygun: %w", err)
		}
	}
	return nil
}

// ensureSender builds the configured provider on first use so that a
// client for a disabled or preview-only configuration never needs
// working credentials.
func (c *Client) ensureSender(ctx context.Context) (email.Sender, error) {
	c.senderOnce.Do(func() {
		if c.sender != nil {
			return
		}
		c.sender, c.senderErr = email.NewSender(ctx, c.cfg, c.log)
	})
	return c.sender, c.senderErr
}

func applyDefaults(cfg *config.Config) {
	if cfg.Provider == "" {
		cfg.Provider = config.ProviderMailgun
	}
	if cfg.Mailgun.BaseURL == "" {
		cfg.Mailgun.BaseURL = "https://api.mailgun.net"
	}
	if cfg.Mailgun.Timeout == 0 {
		cfg.Mailgun.Timeout = 30 * time.Second
	}
	if cfg.Deploy.CurrentRevision == "" {
		cfg.Deploy.CurrentRevision = "HEAD"
	}
	if cfg.Deploy.RepoPath == "" {
		cfg.Deploy.RepoPath = "."
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
