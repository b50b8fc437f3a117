package cli

import (
	"testing"

	"certtriage/internal/config"
	"certtriage/internal/flags"
)

func TestMergeFileConfig_FileFillsUnsetFlags(t *testing.T) {
	cfg := config.New()
	file := config.New()
	file.Dirs.Regular = "/file/regular"
	file.Oracle.Endpoint = "https://file.example.com"
	file.Mail.Port = 2525
	file.Triage.KeepFailed = true
	file.Runtime.Concurrency = 9

	mergeFileConfig(cfg, file, map[string]bool{})

	if cfg.Dirs.Regular != "/file/regular" {
		t.Errorf("Dirs.Regular = %q", cfg.Dirs.Regular)
	}
	if cfg.Oracle.Endpoint != "https://file.example.com" {
		t.Errorf("Oracle.Endpoint = %q", cfg.Oracle.Endpoint)
	}
	if cfg.Mail.Port != 2525 {
		t.Errorf("Mail.Port = %d", cfg.Mail.Port)
	}
	if !cfg.Triage.KeepFailed {
		t.Error("Triage.KeepFailed not taken from file")
	}
	if cfg.Runtime.Concurrency != 9 {
		t.Errorf("Runtime.Concurrency = %d", cfg.Runtime.Concurrency)
	}
}

func TestMergeFileConfig_ExplicitFlagsWin(t *testing.T) {
	cfg := config.New()
	cfg.Dirs.Regular = "/flag/regular"
	cfg.Runtime.Concurrency = 3

	file := config.New()
	file.Dirs.Regular = "/file/regular"
	file.Runtime.Concurrency = 9

	changed := map[string]bool{
		flags.FlagRegularDir:  true,
		flags.FlagConcurrency: true,
	}
	mergeFileConfig(cfg, file, changed)

	if cfg.Dirs.Regular != "/flag/regular" {
		t.Errorf("Dirs.Regular = %q, want flag value preserved", cfg.Dirs.Regular)
	}
	if cfg.Runtime.Concurrency != 3 {
		t.Errorf("Runtime.Concurrency = %d, want flag value preserved", cfg.Runtime.Concurrency)
	}
}

func TestMergeFileConfig_EmptyFileKeepsDefaults(t *testing.T) {
	cfg := config.New()
	mergeFileConfig(cfg, config.New(), map[string]bool{})

	if cfg.Mail.Port != 587 {
		t.Errorf("Mail.Port = %d, want default 587", cfg.Mail.Port)
	}
	if cfg.Output.ConsoleFormat != "text" {
		t.Errorf("Output.ConsoleFormat = %q, want default text", cfg.Output.ConsoleFormat)
	}
	if cfg.Runtime.Concurrency != 5 {
		t.Errorf("Runtime.Concurrency = %d, want default 5", cfg.Runtime.Concurrency)
	}
}
