package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/deploygun/deploygun/internal/config"
	"github.com/deploygun/deploygun/internal/logger"
)

// GmailSender implements Sender using the Gmail API.
type GmailSender struct {
	service *gmail.Service
	log     *logger.Logger
}

// NewGmailSender creates a new GmailSender. It accepts either service
// account credentials with domain-wide delegation (sending as the
// impersonated mailbox, defaulting to the from address) or an OAuth2
// client with a refresh token for the sender mailbox.
func NewGmailSender(ctx context.Context, cfg config.GmailConfig, from string, log *logger.Logger) (*GmailSender, error) {
	if log == nil {
		log = logger.Nop()
	}

	var client option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		creds, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("gmail: failed to read credentials: %w", err)
		}
		jwtConfig, err := google.JWTConfigFromJSON(creds, gmail.GmailSendScope)
		if err != nil {
			return nil, fmt.Errorf("gmail: failed to parse credentials: %w", err)
		}
		// Domain-wide delegation requires impersonating the sending mailbox
		jwtConfig.Subject = cfg.Impersonate
		if jwtConfig.Subject == "" {
			jwtConfig.Subject = bareAddress(from)
		}
		client = option.WithHTTPClient(jwtConfig.Client(ctx))

	case cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RefreshToken != "":
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gmail.GmailSendScope},
		}
		token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
		client = option.WithHTTPClient(oauthCfg.Client(ctx, token))

	default:
		return nil, fmt.Errorf("gmail: credentials are required")
	}

	svc, err := gmail.NewService(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to create service: %w", err)
	}

	return &GmailSender{
		service: svc,
		log:     log.WithComponent("gmail"),
	}, nil
}

// Send delivers the notification via the Gmail API. Pass-through Fields
// have no Gmail representation and are dropped.
func (g *GmailSender) Send(ctx context.Context, msg Message) error {
	if len(msg.Fields) > 0 {
		g.log.Debug().Int("fields", len(msg.Fields)).Msg("gmail cannot carry pass-through fields, dropping")
	}

	headers := []string{
		"From: " + msg.From,
		"To: " + msg.To,
	}
	if msg.CC != "" {
		headers = append(headers, "Cc: "+msg.CC)
	}
	if msg.BCC != "" {
		headers = append(headers, "Bcc: "+msg.BCC)
	}
	headers = append(headers,
		"Subject: "+msg.Subject,
		"MIME-Version: 1.0",
	)

	// Build the MIME message
	var lines []string
	switch {
	case msg.HTML != "" && msg.Text != "":
		// Multipart alternative (text + HTML)
		const boundary = "boundary_deploygun_mail"
		lines = append(headers,
			"Content-Type: multipart/alternative; boundary="+boundary,
			"",
			"--"+boundary,
			"Content-Type: text/plain; charset=UTF-8",
			"Content-Transfer-Encoding: 7bit",
			"",
			msg.Text,
			"",
			"--"+boundary,
			"Content-Type: text/html; charset=UTF-8",
			"Content-Transfer-Encoding: 7bit",
			"",
			msg.HTML,
			"",
			"--"+boundary+"--",
		)
	case msg.HTML != "":
		lines = append(headers,
			"Content-Type: text/html; charset=UTF-8",
			"",
			msg.HTML,
		)
	default:
		lines = append(headers,
			"Content-Type: text/plain; charset=UTF-8",
			"",
			msg.Text,
		)
	}

	gmailMsg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(strings.Join(lines, "\r\n"))),
	}

	if _, err := g.service.Users.Messages.Send("me", gmailMsg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail: failed to send notification: %w", err)
	}

	return nil
}

// bareAddress strips an optional display name from a from header.
func bareAddress(from string) string {
	if a, err := mail.ParseAddress(from); err == nil {
		return a.Address
	}
	return from
}
