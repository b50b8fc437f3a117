// Package triage implements the concurrent validation-and-triage engine:
// it enumerates certificate directories, dispatches each file through the
// encoder and the validity oracle, applies the file-system transition for
// the verdict exactly once per file, and aggregates failure outcomes.
package triage

import (
	"context"
	"fmt"
	"io"
	"os"

	"certtriage/internal/config"
	"certtriage/internal/encoder"
	"certtriage/internal/notify"
	"certtriage/internal/oracle"
	"certtriage/internal/output"

	"github.com/google/uuid"
)

func exitCodeForRun(fatal, passFailed bool) int {
	// Exit code contract:
	// 0 = both passes ran to completion (invalid/unprocessable certificates
	//     are data, not process failure)
	// 2 = at least one pass could not enumerate its directory
	// 3 = fatal error (run did not start; raised by the CLI before Run)
	if fatal {
		return 3
	}
	if passFailed {
		return 2
	}
	return 0
}

// ValidityChecker is the oracle seam: one synchronous verdict per encoded
// certificate.
type ValidityChecker interface {
	Check(ctx context.Context, encoded string) (oracle.Verdict, error)
}

type Engine struct {
	checker  ValidityChecker
	notifier notify.Notifier
	out      *output.Manager

	regularDir  string
	initialDir  string
	invalidDir  string
	keepFailed  bool
	concurrency int

	// echoUnprocessable mirrors unprocessable outcomes onto errWriter. The
	// console sink already reports them on stderr, so the echo is enabled
	// only when the console is disabled.
	echoUnprocessable bool

	// encode is a test seam for the certificate encoder.
	// If nil at construction, the real encoder is used.
	encode func(path string) (string, error)

	// errWriter receives diagnostics (defaults to os.Stderr).
	errWriter io.Writer
}

func NewEngine(checker ValidityChecker, notifier notify.Notifier, out *output.Manager, cfg *config.Config) *Engine {
	return &Engine{
		checker:           checker,
		notifier:          notifier,
		out:               out,
		regularDir:        cfg.Dirs.Regular,
		initialDir:        cfg.Dirs.Initial,
		invalidDir:        cfg.Dirs.Invalid,
		keepFailed:        cfg.Triage.KeepFailed,
		concurrency:       cfg.Runtime.Concurrency,
		echoUnprocessable: cfg.Output.NoConsole,
		encode:            encoder.Encode,
		errWriter:         os.Stderr,
	}
}

// Run executes the two passes sequentially: the regular directory (valid
// files left in place), then the initial directory (valid files promoted
// into the regular directory). A failure enumerating one directory does not
// prevent the other pass from attempting to run.
func (e *Engine) Run(ctx context.Context) int {
	runID := uuid.NewString()
	_ = e.out.Write(output.Event{Type: "run.started", RunID: runID})

	passFailed := false
	if !e.runPass(ctx, PassRegular, e.regularDir, "", runID) {
		passFailed = true
	}
	if !e.runPass(ctx, PassInitial, e.initialDir, e.regularDir, runID) {
		passFailed = true
	}

	code := exitCodeForRun(false, passFailed)
	_ = e.out.Write(output.Event{Type: "run.finished", RunID: runID, ExitCode: code})
	return code
}

func (e *Engine) runPass(ctx context.Context, pass Pass, sourceDir, destOnSuccess, runID string) bool {
	fmt.Fprintf(e.errWriter, "Validating %s directory %s...\n", pass, sourceDir)
	_ = e.out.Write(output.Event{Type: "pass.started", RunID: runID, Pass: string(pass), Dir: sourceDir})

	res, err := e.ValidateDirectory(ctx, pass, sourceDir, destOnSuccess)
	if err != nil {
		fmt.Fprintf(e.errWriter, "Error: %v\n", err)
		// Close the lifecycle so streaming consumers see a balanced
		// started/finished pair even for a pass that could not enumerate.
		_ = e.out.Write(output.Event{
			Type:  "pass.finished",
			RunID: runID,
			Pass:  string(pass),
			Dir:   sourceDir,
			Error: err.Error(),
		})
		return false
	}

	// Invalid certificates alert the operator; unprocessable files never
	// send mail, so transient infrastructure trouble stays out of the inbox.
	for _, inv := range res.Invalid {
		if err := e.notifier.NotifyInvalid(string(pass), inv.File, inv.Reasons, runID); err != nil {
			fmt.Fprintf(e.errWriter, "Error: %v\n", err)
		}
	}
	if e.echoUnprocessable {
		for _, u := range res.Unprocessable {
			fmt.Fprintf(e.errWriter, "could not process %s: %v\n", u.File, u.Cause)
		}
	}

	_ = e.out.Write(output.Event{
		Type:          "pass.finished",
		RunID:         runID,
		Pass:          string(pass),
		Dir:           sourceDir,
		Files:         res.Files,
		Invalid:       len(res.Invalid),
		Unprocessable: len(res.Unprocessable),
	})
	return true
}
