package email

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"strings"

	"github.com/dajohi/goemail"

	"github.com/deploygun/deploygun/internal/config"
	"github.com/deploygun/deploygun/internal/logger"
)

// SMTPSender delivers notifications through an SMTP relay. The relay
// carries a single body per message; when both bodies are present the HTML
// body wins.
type SMTPSender struct {
	cfg  config.SMTPConfig
	log  *logger.Logger
	smtp *goemail.SMTP
}

// NewSMTPSender creates a new SMTPSender connected to the configured relay.
func NewSMTPSender(cfg config.SMTPConfig, log *logger.Logger) (*SMTPSender, error) {
	if log == nil {
		log = logger.Nop()
	}

	u, err := url.Parse(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse smtp url: %w", err)
	}

	// Setup tls config
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.SkipVerify,
	}
	if cfg.CertPath != "" {
		cert, err := os.ReadFile(cfg.CertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read smtp cert: %w", err)
		}
		certPool, err := x509.SystemCertPool()
		if err != nil {
			certPool = x509.NewCertPool()
		}
		if !certPool.AppendCertsFromPEM(cert) {
			return nil, fmt.Errorf("failed to parse smtp cert %s", cfg.CertPath)
		}
		tlsConfig.RootCAs = certPool
	}

	smtp, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPSender{
		cfg:  cfg,
		log:  log.WithComponent("smtp"),
		smtp: smtp,
	}, nil
}

// Send delivers the message through the relay. Recipients are validated
// and added in bare address form before anything touches the wire. The
// underlying client manages its own connection deadlines, so ctx is
// unused here.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	var m *goemail.Message
	from, name := splitFrom(msg.From)
	if msg.HTML != "" {
		m = goemail.NewHTMLMessage(from, msg.Subject, msg.HTML)
	} else {
		m = goemail.NewMessage(from, msg.Subject, msg.Text)
	}
	if name != "" {
		m.SetName(name)
	}

	for _, addr := range splitList(msg.To) {
		a, err := mail.ParseAddress(addr)
		if err != nil {
			return fmt.Errorf("invalid to address %q: %w", addr, err)
		}
		m.AddTo(a.Address)
	}
	for _, addr := range splitList(msg.CC) {
		a, err := mail.ParseAddress(addr)
		if err != nil {
			return fmt.Errorf("invalid cc address %q: %w", addr, err)
		}
		m.AddCC(a.Address)
	}
	for _, addr := range splitList(msg.BCC) {
		a, err := mail.ParseAddress(addr)
		if err != nil {
			return fmt.Errorf("invalid bcc address %q: %w", addr, err)
		}
		m.AddBCC(a.Address)
	}

	if len(msg.Fields) > 0 {
		s.log.Debug().Int("fields", len(msg.Fields)).Msg("relay cannot carry pass-through fields, dropping")
	}

	if err := s.smtp.Send(m); err != nil {
		return fmt.Errorf("failed to send via smtp: %w", err)
	}
	return nil
}

// splitFrom separates a from header into bare address and display name.
func splitFrom(from string) (address, name string) {
	if a, err := mail.ParseAddress(from); err == nil {
		return a.Address, a.Name
	}
	return from, ""
}

// splitList breaks a normalized comma-joined header value back into
// individual addresses.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
