package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var statusColors = map[Status]*color.Color{
	StatusValid:         color.New(color.FgGreen),
	StatusInvalid:       color.New(color.FgRed),
	StatusUnprocessable: color.New(color.FgYellow),
}

type ConsoleSink struct {
	writer io.Writer
	// errWriter receives UNPROCESSABLE lines in text mode so that genuine
	// certificate verdicts on stdout stay separate from infrastructure
	// trouble on stderr.
	errWriter       io.Writer
	format          string // "text", "json", "ndjson"
	mu              sync.Mutex
	results         []FileResult // For JSON array output
	allowedStatuses map[string]bool
}

func NewConsoleSink(w, errW io.Writer, format string, filterStatuses []string) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if errW == nil {
		errW = os.Stderr
	}
	if format == "" {
		format = "text"
	}

	s := &ConsoleSink{
		writer:    w,
		errWriter: errW,
		format:    format,
	}

	if len(filterStatuses) > 0 {
		s.allowedStatuses = make(map[string]bool)
		for _, st := range filterStatuses {
			s.allowedStatuses[strings.ToUpper(st)] = true
		}
	}

	return s
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) writeLocked(v any) error {
	// Apply filtering if configured
	if len(s.allowedStatuses) > 0 {
		if r, ok := v.(FileResult); ok {
			if !s.allowedStatuses[string(r.Status)] {
				return nil
			}
		}
	}

	switch s.format {
	case "json":
		r, ok := v.(FileResult)
		if !ok {
			// Ignore non-result events in JSON console mode.
			return nil
		}
		s.results = append(s.results, r)
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.writer)
		switch t := v.(type) {
		case Event:
			if err := encoder.Encode(t); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		case FileResult:
			if err := encoder.Encode(eventFromResult(t)); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		default:
			return nil
		}
	case "text":
		r, ok := v.(FileResult)
		if !ok {
			// Ignore events in text mode.
			return nil
		}
		return s.writeTextLocked(r)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) writeTextLocked(r FileResult) error {
	w := s.writer
	if r.Status == StatusUnprocessable {
		w = s.errWriter
	}

	c := statusColors[r.Status]
	if c == nil {
		c = color.New()
	}
	if _, err := c.Fprintf(w, "[%s]", r.Status); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, " %s: %s", r.Pass, r.File); err != nil {
		return err
	}
	if len(r.Reasons) > 0 {
		if _, err := fmt.Fprintf(w, " - %s", strings.Join(r.Reasons, "; ")); err != nil {
			return err
		}
	}
	if r.Cause != "" {
		if _, err := fmt.Fprintf(w, " - %s", r.Cause); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return flushIfPossible(w)
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s.results); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	}
	if s.format != "text" && s.format != "ndjson" {
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	return nil
}
