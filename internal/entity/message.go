package entity

// Message is one dated free-text field report inside the input envelope.
// Immutable once read.
type Message struct {
	ID      int    `json:"id"`
	Date    string `json:"date"` // ISO 8601 (YYYY-MM-DD)
	Payload string `json:"payload"`
}

// Batch is the top-level input envelope.
type Batch struct {
	Messages []Message `json:"messages"`
}

// FinalRecord is the output unit: one row per (date, division, operation,
// crop) tuple resolved from a data line. Numeric fields are either a
// non-negative number or null, never raw text.
type FinalRecord struct {
	Date       string   `json:"date"` // DD.MM
	Division   string   `json:"division"`
	Operation  *string  `json:"operation"` // canonical name or null, never raw text
	Crop       *string  `json:"crop"`
	DailyArea  *float64 `json:"dailyArea"`
	TotalArea  *float64 `json:"totalArea"`
	DailyYield *float64 `json:"dailyYield"`
	TotalYield *float64 `json:"totalYield"`
}

// Report packages the records extracted from a single message. Payload is
// echoed unchanged; Parsed preserves the textual order of data lines.
type Report struct {
	MessageNumber int           `json:"message_number"`
	Payload       string        `json:"payload"`
	Parsed        []FinalRecord `json:"parsed"`
}

// OutputBatch is the top-level output envelope, one Report per input
// Message in input order.
type OutputBatch struct {
	Reports []Report `json:"reports"`
}
