package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"certtriage/internal/output"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect run
	// behavior, keep these in sync:
	// - CLI flags in internal/cli/run.go
	// - config-file merge in internal/cli/merge.go
	Dirs    Dirs    `yaml:"dirs"`
	Oracle  Oracle  `yaml:"oracle"`
	Mail    Mail    `yaml:"mail"`
	Triage  Triage  `yaml:"triage"`
	Output  Output  `yaml:"output"`
	Runtime Runtime `yaml:"runtime"`
}

type Dirs struct {
	// Regular is the directory of already-accepted certificates that are
	// revalidated on every run (see --regular-dir).
	Regular string `yaml:"regular"`

	// Initial is the intake directory of newly received certificates
	// (see --initial-dir). Certificates that validate are promoted into
	// the regular directory.
	Initial string `yaml:"initial"`

	// Invalid is where invalid certificates are moved unless --keep-failed
	// is set (see --invalid-dir).
	Invalid string `yaml:"invalid"`
}

type Oracle struct {
	// Endpoint is the URL of the trust-authority validation endpoint
	// (see --endpoint).
	Endpoint string `yaml:"endpoint"`

	// ClientID and ClientSecret form the Basic authorization credential
	// (see --client-id / --client-secret). The secret may also be supplied
	// via the CERTTRIAGE_CLIENT_SECRET environment variable.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`

	// ReferenceID is sent as the fi_reference_id request header
	// (see --reference-id).
	ReferenceID string `yaml:"reference_id"`
}

type Mail struct {
	// Host and Port locate the SMTP server (see --smtp-host / --smtp-port).
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// TLS enables implicit TLS on the SMTP connection (see --smtp-tls).
	TLS bool `yaml:"tls"`

	// Username and Password authenticate to the SMTP server. The password
	// may also be supplied via the CERTTRIAGE_SMTP_PASSWORD environment
	// variable.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// From and Recipient are the message addresses (see --mail-from / --mail-to).
	From      string `yaml:"from"`
	Recipient string `yaml:"recipient"`

	// Disabled suppresses operator notifications entirely (see --no-mail).
	Disabled bool `yaml:"disabled"`
}

type Triage struct {
	// KeepFailed leaves invalid certificates in their source directory
	// instead of moving them to the invalid directory (see --keep-failed).
	KeepFailed bool `yaml:"keep_failed"`
}

type Output struct {
	// ConsoleFormat controls the human-facing console sink format
	// (see --console-format). Allowed values: text, json, ndjson.
	ConsoleFormat string `yaml:"console_format"`

	// ConsoleFilterStatus filters console output by result status
	// (see --console-filter-status). Allowed values: VALID, INVALID, UNPROCESSABLE.
	ConsoleFilterStatus []string `yaml:"console_filter_status"`

	// Out writes structured output to this path (see --out).
	Out string `yaml:"out"`

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --out
	// file extension.
	OutFormat string `yaml:"out_format"`

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool `yaml:"no_console"`
}

type Runtime struct {
	// Concurrency controls parallelism for certificate processing
	// (see --concurrency). Must be >= 1.
	Concurrency int `yaml:"concurrency"`

	// Verbose enables more detailed diagnostics (prints every oracle call
	// and full error details).
	Verbose bool `yaml:"verbose"`
}

func New() *Config {
	return &Config{
		Mail: Mail{
			Port: 587,
		},
		Output: Output{
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			Concurrency: 5,
		},
	}
}

func (c *Config) Validate() error {
	// Directory validation
	if c.Dirs.Regular == "" {
		return errors.New("--regular-dir is required")
	}
	if c.Dirs.Initial == "" {
		return errors.New("--initial-dir is required")
	}
	if c.Dirs.Invalid == "" && !c.Triage.KeepFailed {
		return errors.New("--invalid-dir is required unless --keep-failed is set")
	}

	// Oracle validation
	if c.Oracle.Endpoint == "" {
		return errors.New("--endpoint is required")
	}
	u, err := url.Parse(c.Oracle.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid --endpoint value %q: expected an absolute URL", c.Oracle.Endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid --endpoint scheme %q: must be http or https", u.Scheme)
	}
	if c.Oracle.ClientID == "" {
		return errors.New("--client-id is required")
	}
	if c.Oracle.ClientSecret == "" {
		return errors.New("--client-secret is required (or set CERTTRIAGE_CLIENT_SECRET)")
	}
	if c.Oracle.ReferenceID == "" {
		return errors.New("--reference-id is required")
	}

	// Mail validation (skipped entirely when notifications are disabled)
	if !c.Mail.Disabled {
		if c.Mail.Host == "" {
			return errors.New("--smtp-host is required (or set --no-mail)")
		}
		if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
			return fmt.Errorf("invalid --smtp-port: %d", c.Mail.Port)
		}
		if c.Mail.From == "" {
			return errors.New("--mail-from is required (or set --no-mail)")
		}
		if c.Mail.Recipient == "" {
			return errors.New("--mail-to is required (or set --no-mail)")
		}
	}

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		c.Output.ConsoleFormat = "text"
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	if c.Output.Out != "" {
		format, err := output.ResolveFormat(c.Output.Out, normalizeEnumValue(c.Output.OutFormat))
		if err != nil {
			return fmt.Errorf("%w (see --out-format)", err)
		}
		c.Output.OutFormat = format
	}

	// Runtime validation
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
