package entity

// CandidateRecord is the raw extraction result for one division/data line,
// before any catalog resolution. Textual fields hold whatever the extractor
// pulled out of the line; empty string means the field was absent.
type CandidateRecord struct {
	Date         string // DD.MM, empty when the payload carried no date token
	DivisionRaw  string
	OperationRaw string
	CropRaw      string

	DailyArea  *float64
	TotalArea  *float64
	DailyYield *float64
	TotalYield *float64

	SourceLine       int  // line index within the payload
	MalformedNumeric bool // a numeric token was present but unparsable
}

// Resolution is the outcome of resolving one textual field against the
// reference catalog.
type Resolution struct {
	Canonical  string  // canonical value (division code for divisions)
	Path       string  // canonical path, divisions only
	Confidence float64 // 1.0 for exact matches
	Resolved   bool
	Corrected  bool // resolved via alias or fuzzy match, not exact
}

// ValidatedRecord pairs a candidate with its per-field resolutions.
type ValidatedRecord struct {
	Candidate CandidateRecord
	Division  Resolution
	Operation Resolution
	Crop      Resolution
}
