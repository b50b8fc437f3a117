package cli

import (
	"certtriage/internal/config"
	"certtriage/internal/flags"
)

// mergeFileConfig overlays values from a config file onto cfg. A field is
// taken from the file only when its flag was not explicitly set on the
// command line, so flags always win over the file and the file wins over
// built-in defaults.
func mergeFileConfig(cfg, file *config.Config, changed map[string]bool) {
	mergeString := func(flag string, dst *string, src string) {
		if !changed[flag] && src != "" {
			*dst = src
		}
	}
	mergeInt := func(flag string, dst *int, src int) {
		if !changed[flag] && src != 0 {
			*dst = src
		}
	}
	mergeBool := func(flag string, dst *bool, src bool) {
		if !changed[flag] && src {
			*dst = src
		}
	}

	mergeString(flags.FlagRegularDir, &cfg.Dirs.Regular, file.Dirs.Regular)
	mergeString(flags.FlagInitialDir, &cfg.Dirs.Initial, file.Dirs.Initial)
	mergeString(flags.FlagInvalidDir, &cfg.Dirs.Invalid, file.Dirs.Invalid)

	mergeString(flags.FlagEndpoint, &cfg.Oracle.Endpoint, file.Oracle.Endpoint)
	mergeString(flags.FlagClientID, &cfg.Oracle.ClientID, file.Oracle.ClientID)
	mergeString(flags.FlagClientSecret, &cfg.Oracle.ClientSecret, file.Oracle.ClientSecret)
	mergeString(flags.FlagReferenceID, &cfg.Oracle.ReferenceID, file.Oracle.ReferenceID)

	mergeString(flags.FlagSMTPHost, &cfg.Mail.Host, file.Mail.Host)
	mergeInt(flags.FlagSMTPPort, &cfg.Mail.Port, file.Mail.Port)
	mergeBool(flags.FlagSMTPTLS, &cfg.Mail.TLS, file.Mail.TLS)
	mergeString(flags.FlagSMTPUser, &cfg.Mail.Username, file.Mail.Username)
	mergeString(flags.FlagSMTPPassword, &cfg.Mail.Password, file.Mail.Password)
	mergeString(flags.FlagMailFrom, &cfg.Mail.From, file.Mail.From)
	mergeString(flags.FlagMailTo, &cfg.Mail.Recipient, file.Mail.Recipient)
	mergeBool(flags.FlagNoMail, &cfg.Mail.Disabled, file.Mail.Disabled)

	mergeBool(flags.FlagKeepFailed, &cfg.Triage.KeepFailed, file.Triage.KeepFailed)

	mergeString(flags.FlagConsoleFormat, &cfg.Output.ConsoleFormat, file.Output.ConsoleFormat)
	if !changed[flags.FlagConsoleFilterStatus] && len(file.Output.ConsoleFilterStatus) > 0 {
		cfg.Output.ConsoleFilterStatus = file.Output.ConsoleFilterStatus
	}
	mergeString(flags.FlagOut, &cfg.Output.Out, file.Output.Out)
	mergeString(flags.FlagOutFormat, &cfg.Output.OutFormat, file.Output.OutFormat)
	mergeBool(flags.FlagNoConsole, &cfg.Output.NoConsole, file.Output.NoConsole)

	mergeInt(flags.FlagConcurrency, &cfg.Runtime.Concurrency, file.Runtime.Concurrency)
	mergeBool("verbose", &cfg.Runtime.Verbose, file.Runtime.Verbose)
}
