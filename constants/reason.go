package constants

// DiagReason is the canonical failure reason for diagnostic records.
type DiagReason string

// Stable values (these exact strings are stored and logged).
const (
	ReasonUnclassifiableLine  DiagReason = "UNCLASSIFIABLE_LINE"  // line matched neither header nor data shape
	ReasonUnresolvedReference DiagReason = "UNRESOLVED_REFERENCE" // catalog resolution failed above threshold
	ReasonMalformedNumeric    DiagReason = "MALFORMED_NUMERIC"    // numeric token present but unparsable
	ReasonMissingMeasurement  DiagReason = "MISSING_MEASUREMENT"  // both area fields null after extraction
)
