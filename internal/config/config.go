package config

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Email provider names accepted in the "provider" key.
const (
	ProviderMailgun = "mailgun"
	ProviderSMTP    = "smtp"
	ProviderGmail   = "gmail"
)

// ErrMissing marks a required configuration key that has no value.
var ErrMissing = errors.New("missing required configuration")

// Config holds all configuration for the application
type Config struct {
	Log       LogConfig      `mapstructure:"log"`
	Provider  string         `mapstructure:"provider"`
	Disabled  bool           `mapstructure:"disabled"`
	Mailgun   MailgunConfig  `mapstructure:"mailgun"`
	SMTP      SMTPConfig     `mapstructure:"smtp"`
	Gmail     GmailConfig    `mapstructure:"gmail"`
	Message   MessageConfig  `mapstructure:"message"`
	Deploy    DeployConfig   `mapstructure:"deploy"`
	Templates TemplateConfig `mapstructure:"templates"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MailgunConfig holds Mailgun API configuration
type MailgunConfig struct {
	// APIKey is the private Mailgun API key
	APIKey string `mapstructure:"api_key"`
	// Domain is the Mailgun sending domain the account is configured for
	Domain string `mapstructure:"domain"`
	// BaseURL is the API root (defaults to the US region endpoint)
	BaseURL string `mapstructure:"base_url"`
	// Timeout bounds the message POST
	Timeout time.Duration `mapstructure:"timeout"`
}

// MessagesURL returns the Mailgun messages endpoint for the configured domain
func (c MailgunConfig) MessagesURL() string {
	return fmt.Sprintf("%s/v2/%s/messages", strings.TrimSuffix(c.BaseURL, "/"), c.Domain)
}

// SMTPConfig holds SMTP relay configuration
type SMTPConfig struct {
	// Host is the relay address as host:port
	Host string `mapstructure:"host"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
	// CertPath is an optional root certificate for the relay
	CertPath string `mapstructure:"cert_path"`
	// SkipVerify disables TLS certificate verification
	SkipVerify bool `mapstructure:"skip_verify"`
}

// URL returns the smtps connection string for the relay
func (c SMTPConfig) URL() string {
	return fmt.Sprintf("smtps://%s:%s@%s", c.User, c.Pass, c.Host)
}

// GmailConfig holds Gmail API configuration
type GmailConfig struct {
	// CredentialsFile is the path to service account credentials JSON
	CredentialsFile string `mapstructure:"credentials_file"`
	// Impersonate is the mailbox the service account sends as
	Impersonate string `mapstructure:"impersonate"`
	// ClientID for OAuth2 token-based auth (alternative to service account)
	ClientID string `mapstructure:"client_id"`
	// ClientSecret for OAuth2 token-based auth
	ClientSecret string `mapstructure:"client_secret"`
	// RefreshToken for OAuth2 token-based auth
	RefreshToken string `mapstructure:"refresh_token"`
}

// MessageConfig holds the notification message settings
type MessageConfig struct {
	From       string   `mapstructure:"from"`
	Recipients []string `mapstructure:"recipients"`
	CC         []string `mapstructure:"cc"`
	BCC        []string `mapstructure:"bcc"`
	// RecipientDomain qualifies bare recipient fragments ("ops" -> "ops@domain")
	RecipientDomain string `mapstructure:"recipient_domain"`
	// Subject overrides the computed default subject line
	Subject string `mapstructure:"subject"`
	// Fields are extra form fields passed through to the provider untouched,
	// e.g. "o:tag" or "h:reply-to". Keys read from a config file are
	// lowercased by viper; Mailgun option and header names are
	// case-insensitive.
	Fields map[string]string `mapstructure:"fields"`
}

// DeployConfig describes the deployment being reported
type DeployConfig struct {
	Application      string   `mapstructure:"application"`
	Stage            string   `mapstructure:"stage"`
	DeployedBy       string   `mapstructure:"deployed_by"`
	RepositoryURL    string   `mapstructure:"repository_url"`
	Branch           string   `mapstructure:"branch"`
	PreviousRevision string   `mapstructure:"previous_revision"`
	CurrentRevision  string   `mapstructure:"current_revision"`
	RepoPath         string   `mapstructure:"repo_path"`
	Servers          []string `mapstructure:"servers"`
}

// TemplateConfig holds body template overrides; empty paths use the
// bundled templates
type TemplateConfig struct {
	TextPath string `mapstructure:"text_path"`
	HTMLPath string `mapstructure:"html_path"`
}

// Load reads configuration from file and environment variables. An empty
// path searches the default locations; a missing config file is not an
// error, a malformed one is.
func Load(path string) (*Config, error) {
	// Pick up a local .env first; absence is fine
	_ = godotenv.Load()

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("deploygun")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/deploygun")
	}

	// Set defaults
	setDefaults(v)

	// Read config file (optional unless a path was given)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Bind environment variables
	v.SetEnvPrefix("DEPLOYGUN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that everything a send needs is present. It runs before
// any network call and returns the first problem found, named by its
// configuration key.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderMailgun:
		if c.Mailgun.APIKey == "" {
			return fmt.Errorf("%w: mailgun.api_key", ErrMissing)
		}
		if c.Mailgun.Domain == "" {
			return fmt.Errorf("%w: mailgun.domain", ErrMissing)
		}
	case ProviderSMTP:
		if c.SMTP.Host == "" {
			return fmt.Errorf("%w: smtp.host", ErrMissing)
		}
		if c.SMTP.User == "" {
			return fmt.Errorf("%w: smtp.user", ErrMissing)
		}
		if c.SMTP.Pass == "" {
			return fmt.Errorf("%w: smtp.pass", ErrMissing)
		}
	case ProviderGmail:
		hasServiceAccount := c.Gmail.CredentialsFile != ""
		hasToken := c.Gmail.ClientID != "" && c.Gmail.ClientSecret != "" && c.Gmail.RefreshToken != ""
		if !hasServiceAccount && !hasToken {
			return fmt.Errorf("%w: gmail.credentials_file or gmail.client_id/client_secret/refresh_token", ErrMissing)
		}
	default:
		return fmt.Errorf("unknown email provider: %q", c.Provider)
	}

	if c.Message.From == "" {
		return fmt.Errorf("%w: message.from", ErrMissing)
	}
	if len(c.Message.Recipients) == 0 {
		return fmt.Errorf("%w: message.recipients", ErrMissing)
	}

	// Template overrides must exist when set; empty means bundled
	overrides := []struct {
		key  string
		path string
	}{
		{"templates.text_path", c.Templates.TextPath},
		{"templates.html_path", c.Templates.HTMLPath},
	}
	for _, o := range overrides {
		if o.path == "" {
			continue
		}
		if _, err := os.Stat(o.path); err != nil {
			return fmt.Errorf("%s: template not found: %s", o.key, o.path)
		}
	}

	return nil
}

// RecipientDomain resolves the domain used to qualify bare recipient
// fragments: the explicit setting, else the from-address domain, else the
// Mailgun sending domain. May be empty; the normalizer only complains when
// a bare fragment actually needs it.
func (c *Config) RecipientDomain() string {
	if c.Message.RecipientDomain != "" {
		return c.Message.RecipientDomain
	}
	if addr, err := mail.ParseAddress(c.Message.From); err == nil {
		if i := strings.LastIndex(addr.Address, "@"); i >= 0 && i < len(addr.Address)-1 {
			return addr.Address[i+1:]
		}
	}
	return c.Mailgun.Domain
}

// Subject returns the configured subject, or a default computed from the
// deploy identifiers.
func (c *Config) Subject() string {
	if c.Message.Subject != "" {
		return c.Message.Subject
	}
	switch {
	case c.Deploy.Application != "" && c.Deploy.Stage != "":
		return fmt.Sprintf("Deployed %s to %s", c.Deploy.Application, c.Deploy.Stage)
	case c.Deploy.Application != "":
		return fmt.Sprintf("Deployed %s", c.Deploy.Application)
	default:
		return "Deployment complete"
	}
}

func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Provider defaults
	v.SetDefault("provider", ProviderMailgun)
	v.SetDefault("disabled", false)

	// Mailgun defaults
	v.SetDefault("mailgun.api_key", "")
	v.SetDefault("mailgun.domain", "")
	v.SetDefault("mailgun.base_url", "https://api.mailgun.net")
	v.SetDefault("mailgun.timeout", "30s")

	// SMTP defaults
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.pass", "")
	v.SetDefault("smtp.cert_path", "")
	v.SetDefault("smtp.skip_verify", false)

	// Gmail defaults
	v.SetDefault("gmail.credentials_file", "")
	v.SetDefault("gmail.impersonate", "")
	v.SetDefault("gmail.client_id", "")
	v.SetDefault("gmail.client_secret", "")
	v.SetDefault("gmail.refresh_token", "")

	// Message defaults
	v.SetDefault("message.from", "")
	v.SetDefault("message.recipients", []string{})
	v.SetDefault("message.cc", []string{})
	v.SetDefault("message.bcc", []string{})
	v.SetDefault("message.recipient_domain", "")
	v.SetDefault("message.subject", "")

	// Deploy defaults
	v.SetDefault("deploy.application", "")
	v.SetDefault("deploy.stage", "")
	v.SetDefault("deploy.deployed_by", currentUser())
	v.SetDefault("deploy.repository_url", "")
	v.SetDefault("deploy.branch", "")
	v.SetDefault("deploy.previous_revision", "")
	v.SetDefault("deploy.current_revision", "HEAD")
	v.SetDefault("deploy.repo_path", ".")
	v.SetDefault("deploy.servers", []string{})

	// Template defaults
	v.SetDefault("templates.text_path", "")
	v.SetDefault("templates.html_path", "")
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
