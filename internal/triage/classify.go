package triage

import "certtriage/internal/oracle"

// Error reasons for failed verdict facets, reported in the fixed facet
// order QTSP, signature, revocation, expiry.
const (
	ReasonNotQTSPTrusted = "certificate is not trusted by a qualified trust service provider"
	ReasonBadSignature   = "certificate signature is not valid"
	ReasonRevoked        = "certificate has been revoked"
	ReasonExpired        = "certificate has expired"
)

// failureReasons returns one reason per failed facet, in fixed facet order.
// An empty slice means the certificate is valid.
func failureReasons(v oracle.Verdict) []string {
	var reasons []string
	if !v.QTSPValid {
		reasons = append(reasons, ReasonNotQTSPTrusted)
	}
	if !v.SignatureValid {
		reasons = append(reasons, ReasonBadSignature)
	}
	if !v.NotRevoked {
		reasons = append(reasons, ReasonRevoked)
	}
	if !v.NotExpired {
		reasons = append(reasons, ReasonExpired)
	}
	return reasons
}
