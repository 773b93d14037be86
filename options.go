package transfuse

import "io"

// DocumentOption configures a Document at construction time, following
// gotlai's functional-options pattern (see gotlai.Option in translator.go).
type DocumentOption func(*Document)

// WithDiagnostics sets the sink non-fatal diagnostics (Missing,
// Truncation) are written to as they are raised, in addition to being
// collected for Diagnostics(). The default is io.Discard.
func WithDiagnostics(w io.Writer) DocumentOption {
	return func(d *Document) {
		if w != nil {
			d.diagW = w
		}
	}
}

// WithStreamDialect sets the wire framing Extract uses when emitting
// blocks. Required before calling Extract; Inject does not need it.
func WithStreamDialect(dialect StreamDialect) DocumentOption {
	return func(d *Document) {
		d.dialect = dialect
	}
}

// WithReservedSentinelPolicy overrides the default RejectReservedSentinels
// policy (spec.md §9, DESIGN.md Open Question 1).
func WithReservedSentinelPolicy(policy ReservedSentinelPolicy) DocumentOption {
	return func(d *Document) {
		d.policy = policy
	}
}
