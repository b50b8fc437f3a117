package output

// Status classifies the outcome of triaging one certificate file.
type Status string

const (
	StatusValid         Status = "VALID"
	StatusInvalid       Status = "INVALID"
	StatusUnprocessable Status = "UNPROCESSABLE"
)

// FileResult is the per-file outcome record written to sinks.
type FileResult struct {
	File   string `json:"file"`
	Pass   string `json:"pass"`
	Status Status `json:"status"`
	// Reasons lists one entry per failed verdict facet, in fixed facet
	// order, for INVALID results.
	Reasons []string `json:"reasons,omitempty"`
	// Cause describes why an UNPROCESSABLE file could not be triaged.
	Cause string `json:"cause,omitempty"`
}

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line), including:
// - run.started
// - pass.started
// - file.result
// - pass.finished
// - run.finished
//
// JSON mode remains an aggregate of FileResult values.
type Event struct {
	Type  string `json:"type"`
	RunID string `json:"run_id,omitempty"`
	Pass  string `json:"pass,omitempty"`
	Dir   string `json:"dir,omitempty"`
	*FileResult
	Files         int `json:"files,omitempty"`
	Invalid       int `json:"invalid,omitempty"`
	Unprocessable int `json:"unprocessable,omitempty"`
	ExitCode      int `json:"exit_code,omitempty"`
	// Error is set on pass.finished when the pass failed to enumerate its
	// directory.
	Error string `json:"error,omitempty"`
}

func eventFromResult(r FileResult) Event {
	return Event{Type: "file.result", Pass: r.Pass, FileResult: &r}
}
