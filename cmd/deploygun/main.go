package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deploygun/deploygun/internal/buildinfo"
	"github.com/deploygun/deploygun/internal/config"
	"github.com/deploygun/deploygun/internal/email"
	"github.com/deploygun/deploygun/internal/hooks"
	"github.com/deploygun/deploygun/internal/logger"
	"github.com/deploygun/deploygun/internal/notify"
	"github.com/deploygun/deploygun/internal/recipient"
	"github.com/deploygun/deploygun/internal/report"
	"github.com/deploygun/deploygun/internal/revlog"
)

var (
	cfgPath      string
	logLevel     string
	logFormat    string
	dryRun       bool
	renderFormat string
)

var rootCmd = &cobra.Command{
	Use:           "deploygun",
	Short:         "Email deploy reports through Mailgun, SMTP or Gmail",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send the deploy notification",
	RunE:  runNotify,
}

var hookCmd = &cobra.Command{
	Use:   "hook [event]",
	Short: "Run the hooks registered for a deploy lifecycle event",
	Args:  cobra.ExactArgs(1),
	RunE:  runHook,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the notification bodies to stdout without sending",
	RunE:  runRender,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and show what notify would send",
	RunE:  runCheck,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(buildinfo.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override log format (text, json)")

	notifyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "render and print instead of sending")
	renderCmd.Flags().StringVar(&renderFormat, "format", "both", "body to print: text, html or both")

	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger, applying flag
// overrides.
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	return cfg, log, nil
}

// buildNotifier wires the dispatch pipeline. A disabled configuration
// skips sender construction entirely so that bad provider credentials
// cannot fail a disabled run.
func buildNotifier(ctx context.Context, cfg *config.Config, log *logger.Logger) (*notify.Notifier, error) {
	log = log.WithDeploy(cfg.Deploy.Application, cfg.Deploy.Stage)

	var sender email.Sender
	if !cfg.Disabled {
		s, err := email.NewSender(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		sender = s
	}

	source := revlog.New(cfg.Deploy.RepoPath, log)
	return notify.New(cfg, sender, source, report.NewRenderer(), log), nil
}

func runNotify(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	if dryRun {
		return printPreview(cmd.Context(), cfg, log, "both")
	}

	n, err := buildNotifier(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	return n.Notify(cmd.Context())
}

func runHook(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	registry := hooks.NewRegistry(log)
	registerDefaultHooks(registry, cfg, log)

	return registry.Run(cmd.Context(), args[0])
}

// registerDefaultHooks wires the standard deploy lifecycle: configuration
// check when the deploy starts, notification when it finishes.
func registerDefaultHooks(r *hooks.Registry, cfg *config.Config, log *logger.Logger) {
	r.Register(hooks.DeployStarting, "check-notification-config", func(ctx context.Context) error {
		if cfg.Disabled {
			return nil
		}
		return cfg.Validate()
	})

	r.Register(hooks.DeployFinished, "notify-of-deploy", func(ctx context.Context) error {
		n, err := buildNotifier(ctx, cfg, log)
		if err != nil {
			return err
		}
		return n.Notify(ctx)
	})
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	return printPreview(cmd.Context(), cfg, log, renderFormat)
}

func printPreview(ctx context.Context, cfg *config.Config, log *logger.Logger, format string) error {
	source := revlog.New(cfg.Deploy.RepoPath, log)
	n := notify.New(cfg, nil, source, report.NewRenderer(), log)

	text, html, err := n.Preview(ctx)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		fmt.Println(text)
	case "html":
		fmt.Println(html)
	case "both":
		fmt.Println(text)
		fmt.Println("----")
		fmt.Println(html)
	default:
		return fmt.Errorf("unknown render format: %q", format)
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	domain := cfg.RecipientDomain()
	to, err := recipient.Normalize(cfg.Message.Recipients, domain)
	if err != nil {
		return err
	}
	cc, err := recipient.Normalize(cfg.Message.CC, domain)
	if err != nil {
		return err
	}
	bcc, err := recipient.Normalize(cfg.Message.BCC, domain)
	if err != nil {
		return err
	}

	fmt.Printf("Provider:  %s\n", cfg.Provider)
	fmt.Printf("Disabled:  %v\n", cfg.Disabled)
	fmt.Printf("From:      %s\n", cfg.Message.From)
	fmt.Printf("To:        %s\n", to)
	if cc != "" {
		fmt.Printf("Cc:        %s\n", cc)
	}
	if bcc != "" {
		fmt.Printf("Bcc:       %s\n", bcc)
	}
	fmt.Printf("Subject:   %s\n", cfg.Subject())
	fmt.Printf("Templates: text=%s html=%s\n", orBundled(cfg.Templates.TextPath), orBundled(cfg.Templates.HTMLPath))
	return nil
}

func orBundled(path string) string {
	if path == "" {
		return "bundled"
	}
	return path
}
