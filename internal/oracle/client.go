// Package oracle implements the client for the remote trust-authority
// validation endpoint: one synchronous request per certificate, carrying
// authentication and context headers, returning a structured Verdict.
package oracle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/sync/singleflight"
)

// protocolVersion is the value of the "version" request header.
const protocolVersion = "1"

// verdictSchema pins the expected response shape. All four facets are
// required booleans, so a missing or mistyped field is a decode failure
// rather than an implicit false.
const verdictSchema = `{
	"type": "object",
	"required": ["certificateValidity"],
	"properties": {
		"certificateValidity": {
			"type": "object",
			"required": ["qtspValidity", "signatureValidity", "notRevoked", "notExpired"],
			"properties": {
				"qtspValidity":      {"type": "boolean"},
				"signatureValidity": {"type": "boolean"},
				"notRevoked":        {"type": "boolean"},
				"notExpired":        {"type": "boolean"}
			}
		}
	}
}`

type verdictEnvelope struct {
	CertificateValidity struct {
		QTSPValidity      bool `json:"qtspValidity"`
		SignatureValidity bool `json:"signatureValidity"`
		NotRevoked        bool `json:"notRevoked"`
		NotExpired        bool `json:"notExpired"`
	} `json:"certificateValidity"`
}

type Client struct {
	endpoint    string
	referenceID string
	// authorization is the Basic credential, computed once at construction
	// and reused for every request in the run.
	authorization string
	http          *http.Client
	schema        *gojsonschema.Schema
	// group collapses concurrent checks for byte-identical certificate
	// payloads into a single request. Each caller still receives its own
	// copy of the verdict.
	group singleflight.Group
}

type options struct {
	verbose bool
	// writer controls where verbose HTTP logs are written (typically stderr)
	// so structured output on stdout stays clean and tests can capture logs.
	writer io.Writer
	http   *http.Client
}

type Option func(*options)

func WithVerbose(enabled bool, writer io.Writer) Option {
	return func(o *options) {
		o.verbose = enabled
		o.writer = writer
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.http = c
	}
}

// loggingRoundTripper wraps an underlying transport and emits one line per
// request and response (including latency) when verbose logging is enabled.
type loggingRoundTripper struct {
	base http.RoundTripper
	w    io.Writer
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	if t.w != nil {
		_, _ = fmt.Fprintf(t.w, "[verbose] oracle: %s %s\n", req.Method, req.URL.String())
	}
	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start)
	if t.w != nil {
		if err != nil {
			_, _ = fmt.Fprintf(t.w, "[verbose] oracle: error after %s: %v\n", dur.Truncate(time.Millisecond), err)
		} else {
			_, _ = fmt.Fprintf(t.w, "[verbose] oracle: %d %s (%s)\n", resp.StatusCode, http.StatusText(resp.StatusCode), dur.Truncate(time.Millisecond))
		}
	}
	return resp, err
}

func New(endpoint, clientID, clientSecret, referenceID string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("oracle client: endpoint is required")
	}
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("oracle client: credentials are required")
	}

	o := &options{}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	if o.verbose && o.writer == nil {
		o.writer = os.Stderr
	}

	hc := o.http
	if hc == nil {
		// No per-call timeout: a hung call stalls only its worker, and the
		// pass waits for the slowest straggler.
		hc = &http.Client{}
	}
	if o.verbose {
		transport := hc.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		wrapped := *hc
		wrapped.Transport = &loggingRoundTripper{base: transport, w: o.writer}
		hc = &wrapped
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(verdictSchema))
	if err != nil {
		return nil, fmt.Errorf("oracle client: compile verdict schema: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
	return &Client{
		endpoint:      endpoint,
		referenceID:   referenceID,
		authorization: "Basic " + basic,
		http:          hc,
		schema:        schema,
	}, nil
}

// Check performs one request-response exchange for the encoded certificate
// and returns the authority's verdict. Transport failures, non-success
// statuses, and undecodable bodies all return an *OracleError.
func (c *Client) Check(ctx context.Context, encoded string) (Verdict, error) {
	v, err, _ := c.group.Do(encoded, func() (any, error) {
		return c.check(ctx, encoded)
	})
	if err != nil {
		return Verdict{}, err
	}
	return v.(Verdict), nil
}

func (c *Client) check(ctx context.Context, encoded string) (Verdict, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, nil)
	if err != nil {
		return Verdict{}, &OracleError{Kind: KindTransport, Cause: err}
	}
	req.Header.Set("Authorization", c.authorization)
	req.Header.Set("fi_reference_id", c.referenceID)
	req.Header.Set("version", protocolVersion)
	req.Header.Set("eidas", encoded)

	resp, err := c.http.Do(req)
	if err != nil {
		return Verdict{}, &OracleError{Kind: KindTransport, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Verdict{}, &OracleError{Kind: KindTransport, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return Verdict{}, &OracleError{Kind: KindStatus, StatusCode: resp.StatusCode}
	}

	res, err := c.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		// Not JSON at all.
		return Verdict{}, &OracleError{Kind: KindBody, Cause: err}
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, desc := range res.Errors() {
			msgs = append(msgs, desc.String())
		}
		return Verdict{}, &OracleError{Kind: KindBody, Detail: strings.Join(msgs, "; ")}
	}

	var env verdictEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Verdict{}, &OracleError{Kind: KindBody, Cause: err}
	}

	cv := env.CertificateValidity
	return Verdict{
		QTSPValid:      cv.QTSPValidity,
		SignatureValid: cv.SignatureValidity,
		NotRevoked:     cv.NotRevoked,
		NotExpired:     cv.NotExpired,
	}, nil
}
