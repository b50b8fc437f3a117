package triage

import "fmt"

// DirectoryError reports that a source directory could not be enumerated.
// It fails the whole pass: the engine returns it instead of degrading into
// per-file failures.
type DirectoryError struct {
	Dir   string
	Cause error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("enumerate directory %s: %v", e.Dir, e.Cause)
}

func (e *DirectoryError) Unwrap() error {
	return e.Cause
}

// TransitionError reports that a file move failed after the verdict was
// already known. It is reported distinctly from validation failures so that
// "could not validate" and "validated but could not relocate" never blur.
type TransitionError struct {
	From  string
	To    string
	Cause error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("relocate %s to %s after verdict: %v", e.From, e.To, e.Cause)
}

func (e *TransitionError) Unwrap() error {
	return e.Cause
}
