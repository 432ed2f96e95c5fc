package entity

import "github.com/mkuznetsov-agro/agroreport/constants"

// Diagnostic describes one dropped or unresolved line. Diagnostics accumulate
// alongside the structured output, they never replace it.
type Diagnostic struct {
	MessageID int                  `json:"message_id"`
	Line      int                  `json:"line"`
	Raw       string               `json:"raw"`
	Reason    constants.DiagReason `json:"reason"`
	Detail    string               `json:"detail,omitempty"`
}

// DiagnosticSink receives per-line diagnostics from the pipeline. The
// surrounding application decides whether to log, persist or count them.
type DiagnosticSink interface {
	Report(d Diagnostic)
}

// DiagnosticList is the trivial in-memory sink.
type DiagnosticList struct {
	Items []Diagnostic
}

func (l *DiagnosticList) Report(d Diagnostic) {
	l.Items = append(l.Items, d)
}
