package deploygun

import (
	"github.com/deploygun/deploygun/internal/config"
	"github.com/deploygun/deploygun/internal/email"
)

// Provider names accepted in Config.Provider.
const (
	ProviderMailgun = config.ProviderMailgun
	ProviderSMTP    = config.ProviderSMTP
	ProviderGmail   = config.ProviderGmail
)

// Config mirrors the deploygun configuration file. Build one by hand or
// load it with Load.
type Config = config.Config

// Aliases for the configuration sections so that a Config can be built
// without importing internal packages.
type (
	LogConfig      = config.LogConfig
	MailgunConfig  = config.MailgunConfig
	SMTPConfig     = config.SMTPConfig
	GmailConfig    = config.GmailConfig
	MessageConfig  = config.MessageConfig
	DeployConfig   = config.DeployConfig
	TemplateConfig = config.TemplateConfig
)

// Message is the assembled notification handed to a Sender.
type Message = email.Message

// Sender delivers an assembled message. Implementations replace the
// provider selected by the configuration, via WithSender.
type Sender = email.Sender
