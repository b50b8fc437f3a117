// Package encoder turns on-disk certificate files into the canonical
// transport form expected by the validity oracle: base64 of the raw DER
// certificate bytes. Both PEM-wrapped and bare DER files are accepted, but
// the bytes must parse as an X.509 certificate either way.
package encoder

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
)

// EncodingError reports that a file could not be read or parsed as a
// certificate. It is a per-file, recoverable failure.
type EncodingError struct {
	Path  string
	Cause error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode certificate %s: %v", e.Path, e.Cause)
}

func (e *EncodingError) Unwrap() error {
	return e.Cause
}

// Encode reads the file at path and returns base64(DER) of the certificate
// it contains. It has no side effects; any failure is an *EncodingError.
func Encode(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &EncodingError{Path: path, Cause: err}
	}

	der := data
	if block, _ := pem.Decode(data); block != nil {
		if block.Type != "CERTIFICATE" {
			return "", &EncodingError{Path: path, Cause: fmt.Errorf("unexpected PEM block type %q", block.Type)}
		}
		der = block.Bytes
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return "", &EncodingError{Path: path, Cause: err}
	}

	return base64.StdEncoding.EncodeToString(cert.Raw), nil
}
