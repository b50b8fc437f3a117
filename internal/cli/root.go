package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "certtriage",
	Short: "Validate certificate batches against a trust authority and triage them by verdict",
	Long: `Certtriage validates digital certificate files against a remote trust
authority and routes each file to a destination directory based on the
verdict, notifying an operator by email on invalid certificates.

A file's directory location after a run is the durable record of its
outcome: invalid certificates are moved to the invalid directory, newly
received certificates that validate are promoted from the initial directory
into the regular directory.

Examples:
	# Show available commands and global flags
	certtriage --help

	# Triage both directories once
	certtriage run --config /etc/certtriage.yaml

	# Keep watching the intake directory
	certtriage watch --config /etc/certtriage.yaml

	# Print build info
	certtriage version`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, "verbose", false, "Enable verbose logging (prints every oracle call and full error details)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
