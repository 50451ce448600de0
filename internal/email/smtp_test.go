package email

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploygun/deploygun/internal/config"
)

func testSMTPSender(t *testing.T) *SMTPSender {
	t.Helper()
	s, err := NewSMTPSender(config.SMTPConfig{
		Host: "relay.example.com:465",
		User: "deploy",
		Pass: "secret",
	}, nil)
	require.NoError(t, err)
	return s
}

func TestNewSMTPSenderBadCert(t *testing.T) {
	certPath := filepath.Join(t.TempDir(), "relay.pem")
	require.NoError(t, os.WriteFile(certPath, []byte("not a certificate"), 0644))

	_, err := NewSMTPSender(config.SMTPConfig{
		Host:     "relay.example.com:465",
		CertPath: certPath,
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse smtp cert")
}

// Recipient validation happens while the message is assembled, before the
// relay is dialed, so a bad address surfaces without any network involved.
func TestSMTPSendRejectsBadRecipient(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"to", Message{From: "deploy@example.com", To: "not an address"}, "invalid to address"},
		{"cc", Message{From: "deploy@example.com", To: "a@x.com", CC: "not an address"}, "invalid cc address"},
		{"bcc", Message{From: "deploy@example.com", To: "a@x.com", BCC: "not an address"}, "invalid bcc address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testSMTPSender(t).Send(context.Background(), tt.msg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
