package encoder

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// newCertDER creates a self-signed certificate and returns its DER bytes.
func newCertDER(t *testing.T) []byte {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "triage-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	return der
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEncode_PEM(t *testing.T) {
	der := newCertDER(t)
	pemData := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	path := writeFile(t, "cert.pem", pemData)

	got, err := Encode(path)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := base64.StdEncoding.EncodeToString(der); got != want {
		t.Errorf("Encode returned %d bytes of base64 that do not match the DER input", len(got))
	}
}

func TestEncode_DER(t *testing.T) {
	der := newCertDER(t)
	path := writeFile(t, "cert.der", der)

	got, err := Encode(path)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := base64.StdEncoding.EncodeToString(der); got != want {
		t.Error("Encode of DER input does not round-trip")
	}
}

func TestEncode_Failures(t *testing.T) {
	der := newCertDER(t)
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.pem") },
		},
		{
			name: "corrupt bytes",
			path: func(t *testing.T) string { return writeFile(t, "junk.der", []byte("not a certificate")) },
		},
		{
			name: "wrong pem block type",
			path: func(t *testing.T) string {
				data := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
				return writeFile(t, "key.pem", data)
			},
		},
		{
			name: "pem block with corrupt der",
			path: func(t *testing.T) string {
				data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("garbage")})
				return writeFile(t, "bad.pem", data)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.path(t))
			if err == nil {
				t.Fatal("Encode: expected error, got nil")
			}
			var encErr *EncodingError
			if !errors.As(err, &encErr) {
				t.Fatalf("Encode error is %T, want *EncodingError", err)
			}
			if encErr.Path == "" {
				t.Error("EncodingError.Path is empty")
			}
		})
	}
}
