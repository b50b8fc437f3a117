package oracle

import "fmt"

// ErrorKind tells which stage of the oracle exchange failed.
type ErrorKind string

const (
	// KindTransport covers failures before an HTTP response was received.
	KindTransport ErrorKind = "transport"
	// KindStatus covers non-success HTTP statuses.
	KindStatus ErrorKind = "status"
	// KindBody covers response bodies that do not decode into a verdict.
	// A malformed or incomplete body is a hard failure, never an implicit
	// all-facets-false verdict.
	KindBody ErrorKind = "body"
)

// OracleError reports a failed exchange with the trust authority. It is a
// per-file, recoverable failure: the engine records the file as
// unprocessable and leaves it in place.
type OracleError struct {
	Kind       ErrorKind
	StatusCode int
	Detail     string
	Cause      error
}

func (e *OracleError) Error() string {
	switch e.Kind {
	case KindTransport:
		return fmt.Sprintf("oracle request failed: %v", e.Cause)
	case KindStatus:
		return fmt.Sprintf("oracle returned status %d", e.StatusCode)
	case KindBody:
		if e.Cause != nil {
			return fmt.Sprintf("oracle response body invalid: %v", e.Cause)
		}
		return fmt.Sprintf("oracle response body invalid: %s", e.Detail)
	}
	return fmt.Sprintf("oracle error (%s)", e.Kind)
}

func (e *OracleError) Unwrap() error {
	return e.Cause
}
