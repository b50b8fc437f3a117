package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// config merge logic. Keeping these as constants helps avoid drift between
// Cobra flag wiring and the code that checks whether a flag was explicitly
// set (config-file merging).
// IMPORTANT: These are flag *names* without leading dashes.
const (
	// Directories
	FlagRegularDir = "regular-dir"
	FlagInitialDir = "initial-dir"
	FlagInvalidDir = "invalid-dir"

	// Oracle
	FlagEndpoint     = "endpoint"
	FlagClientID     = "client-id"
	FlagClientSecret = "client-secret"
	FlagReferenceID  = "reference-id"

	// Mail
	FlagSMTPHost     = "smtp-host"
	FlagSMTPPort     = "smtp-port"
	FlagSMTPTLS      = "smtp-tls"
	FlagSMTPUser     = "smtp-user"
	FlagSMTPPassword = "smtp-password"
	FlagMailFrom     = "mail-from"
	FlagMailTo       = "mail-to"
	FlagNoMail       = "no-mail"

	// Triage
	FlagKeepFailed = "keep-failed"

	// Output
	FlagConsoleFormat       = "console-format"
	FlagConsoleFilterStatus = "console-filter-status"
	FlagOut                 = "out"
	FlagOutFormat           = "out-format"
	FlagNoConsole           = "no-console"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagConfig      = "config"
)
