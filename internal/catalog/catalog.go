package catalog

// Match is the outcome of resolving free text against a canonical set.
type Match struct {
	Canonical  string
	Confidence float64
	Corrected  bool // resolved via alias or fuzzy match, not exact
}

// DivisionMatch resolves free text to a node in the division tree.
type DivisionMatch struct {
	Code       string
	Path       string // canonical path from the region root, "/"-joined
	Confidence float64
	Corrected  bool
}

// Catalog is the immutable lookup service the pipeline consumes. Safe for
// concurrent reads; never mutated during a run.
type Catalog interface {
	LookupOperation(text string) (Match, bool)
	LookupCrop(text string) (Match, bool)
	LookupDivision(text string) (DivisionMatch, bool)

	// OperationTerms and CropTerms expose the recognition vocabulary
	// (canonical names plus aliases, longest first) for prefix extraction.
	OperationTerms() []string
	CropTerms() []string
}

// Entry is one canonical value with its known alias spellings.
type Entry struct {
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases,omitempty"`
}

// Division is one node of the region -> department -> sub-unit tree.
type Division struct {
	Code        string   `yaml:"code"`
	ParentCode  string   `yaml:"parent,omitempty"`
	DisplayName string   `yaml:"name"`
	Aliases     []string `yaml:"aliases,omitempty"`
}

// DeptRange maps a contiguous sub-unit number range onto a department node.
type DeptRange struct {
	From int    `yaml:"from"`
	To   int    `yaml:"to"`
	Code string `yaml:"code"`
}

// Tables holds the reference data a catalog is built from. The tables are
// authored externally (built-in defaults or a YAML file); the pipeline never
// sees them directly.
type Tables struct {
	// Threshold is the minimum Levenshtein similarity for a fuzzy match.
	Threshold  float64     `yaml:"threshold,omitempty"`
	Operations []Entry     `yaml:"operations"`
	Crops      []Entry     `yaml:"crops"`
	Divisions  []Division  `yaml:"divisions"`
	DeptRanges []DeptRange `yaml:"departments"`
}
