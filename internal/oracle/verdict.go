package oracle

// Verdict is the trust authority's judgement on one certificate, as four
// independent facets. A certificate is valid iff all four hold.
type Verdict struct {
	QTSPValid      bool
	SignatureValid bool
	NotRevoked     bool
	NotExpired     bool
}

// Valid reports whether every facet holds.
func (v Verdict) Valid() bool {
	return v.QTSPValid && v.SignatureValid && v.NotRevoked && v.NotExpired
}
