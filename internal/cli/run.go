package cli

import (
	"context"
	"fmt"
	"os"

	"certtriage/internal/config"
	"certtriage/internal/flags"
	"certtriage/internal/notify"
	"certtriage/internal/oracle"
	"certtriage/internal/output"
	"certtriage/internal/triage"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var cfg = config.New()
var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Triage the regular and initial certificate directories once",
	Long: `Triage the regular and initial certificate directories once.

Two sequential passes share the same validation core:
  1. The regular directory is revalidated; invalid certificates are moved
     to the invalid directory (unless --keep-failed) and the operator is
     notified. Valid certificates stay where they are.
  2. The initial (intake) directory is validated; certificates that pass
     are promoted into the regular directory.

Files whose verdict cannot be determined (unreadable, malformed, or the
authority was unreachable) are left untouched and reported on stderr only;
no mail is sent for infrastructure trouble.

Authentication:
  The trust authority requires Basic credentials (--client-id and
  --client-secret). The secret may also be supplied via the
  CERTTRIAGE_CLIENT_SECRET environment variable; the SMTP password via
  CERTTRIAGE_SMTP_PASSWORD.

Output:
	Console output is controlled by --console-format (default: text).
	Structured output can be written via --out / --out-format.
	NDJSON mode emits one JSON object per line: lifecycle Events with a
	"type" field (run.started, pass.started, file.result, pass.finished,
	run.finished).

Exit codes:
	0 = both passes ran to completion
	2 = a source directory could not be enumerated (the other pass still ran)
	3 = configuration error (no pass was attempted)

Examples:
  certtriage run --config /etc/certtriage.yaml

  certtriage run \
    --regular-dir /var/certs/accepted --initial-dir /var/certs/intake \
    --invalid-dir /var/certs/invalid \
    --endpoint https://authority.example.com/validate \
    --client-id fi-client --reference-id FI-42 \
    --smtp-host mail.example.com --mail-from certs@example.com \
    --mail-to operator@example.com
`,
	Run: func(cmd *cobra.Command, args []string) {
		eng, outMgr, code := setupEngine(cmd)
		if eng == nil {
			os.Exit(code)
		}
		code = eng.Run(context.Background())
		// Close before exiting: os.Exit skips deferred calls, and the JSON
		// console/file sinks only flush their aggregate on Close.
		_ = outMgr.Close()
		os.Exit(code)
	},
}

// setupEngine validates configuration and wires the oracle client, the
// notifier, the output sinks, and the engine. On failure it prints the
// problem and returns a nil engine with the fatal exit code.
func setupEngine(cmd *cobra.Command) (*triage.Engine, *output.Manager, int) {
	if configPath != "" {
		fileCfg, err := config.LoadFile(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return nil, nil, 3
		}
		mergeFileConfig(cfg, fileCfg, changedFlags(cmd))
	}
	applyEnvSecrets(cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, nil, 3
	}

	client, err := oracle.New(
		cfg.Oracle.Endpoint,
		cfg.Oracle.ClientID,
		cfg.Oracle.ClientSecret,
		cfg.Oracle.ReferenceID,
		oracle.WithVerbose(cfg.Runtime.Verbose, nil),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, nil, 3
	}

	var notifier notify.Notifier = notify.Nop{}
	if !cfg.Mail.Disabled {
		notifier = notify.NewMailer(cfg.Mail)
	}

	outMgr, err := setupOutputManager(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating output sinks: %v\n", err)
		return nil, nil, 3
	}

	return triage.NewEngine(client, notifier, outMgr, cfg), outMgr, 0
}

func setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	// Console Sink
	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(nil, nil, cfg.Output.ConsoleFormat, cfg.Output.ConsoleFilterStatus)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// File Sink
	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// applyEnvSecrets fills credential fields from the environment when they
// were not provided via flag or config file.
func applyEnvSecrets(cfg *config.Config) {
	if cfg.Oracle.ClientSecret == "" {
		cfg.Oracle.ClientSecret = os.Getenv("CERTTRIAGE_CLIENT_SECRET")
	}
	if cfg.Mail.Password == "" {
		cfg.Mail.Password = os.Getenv("CERTTRIAGE_SMTP_PASSWORD")
	}
}

func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := make(map[string]bool)
	if cmd == nil {
		return changed
	}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		changed[f.Name] = true
	})
	return changed
}

func registerFlags(cmd *cobra.Command) {
	// Directories
	cmd.Flags().StringVar(&cfg.Dirs.Regular, flags.FlagRegularDir, "", "Directory of accepted certificates, revalidated every run")
	cmd.Flags().StringVar(&cfg.Dirs.Initial, flags.FlagInitialDir, "", "Intake directory of newly received certificates")
	cmd.Flags().StringVar(&cfg.Dirs.Invalid, flags.FlagInvalidDir, "", "Destination directory for invalid certificates")

	// Oracle
	cmd.Flags().StringVar(&cfg.Oracle.Endpoint, flags.FlagEndpoint, "", "Trust-authority validation endpoint URL")
	cmd.Flags().StringVar(&cfg.Oracle.ClientID, flags.FlagClientID, "", "Client identity for Basic authorization")
	cmd.Flags().StringVar(&cfg.Oracle.ClientSecret, flags.FlagClientSecret, "", "Client secret for Basic authorization (prefer CERTTRIAGE_CLIENT_SECRET)")
	cmd.Flags().StringVar(&cfg.Oracle.ReferenceID, flags.FlagReferenceID, "", "Value of the fi_reference_id request header")

	// Mail
	cmd.Flags().StringVar(&cfg.Mail.Host, flags.FlagSMTPHost, "", "SMTP server host")
	cmd.Flags().IntVar(&cfg.Mail.Port, flags.FlagSMTPPort, cfg.Mail.Port, "SMTP server port (default: 587)")
	cmd.Flags().BoolVar(&cfg.Mail.TLS, flags.FlagSMTPTLS, false, "Use implicit TLS for the SMTP connection")
	cmd.Flags().StringVar(&cfg.Mail.Username, flags.FlagSMTPUser, "", "SMTP username")
	cmd.Flags().StringVar(&cfg.Mail.Password, flags.FlagSMTPPassword, "", "SMTP password (prefer CERTTRIAGE_SMTP_PASSWORD)")
	cmd.Flags().StringVar(&cfg.Mail.From, flags.FlagMailFrom, "", "Notification sender address")
	cmd.Flags().StringVar(&cfg.Mail.Recipient, flags.FlagMailTo, "", "Notification recipient address")
	cmd.Flags().BoolVar(&cfg.Mail.Disabled, flags.FlagNoMail, false, "Suppress operator notifications")

	// Triage
	cmd.Flags().BoolVar(&cfg.Triage.KeepFailed, flags.FlagKeepFailed, false, "Leave invalid certificates in their source directory instead of moving them")

	// Output
	cmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json|ndjson (default: text)")
	cmd.Flags().StringSliceVar(&cfg.Output.ConsoleFilterStatus, flags.FlagConsoleFilterStatus, nil, "Filter console output by status (VALID, INVALID, UNPROCESSABLE). Comma-separated.")
	cmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	cmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	cmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --out)")

	// Runtime
	cmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Concurrent workers (default: 5)")
	cmd.Flags().StringVar(&configPath, flags.FlagConfig, "", "YAML config file; explicitly set flags take precedence")
}

func init() {
	rootCmd.AddCommand(runCmd)
	registerFlags(runCmd)
}
