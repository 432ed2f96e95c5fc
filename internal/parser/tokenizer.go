package parser

import (
	"regexp"
	"strings"
)

// LineKind classifies one logical line of a report payload.
type LineKind string

const (
	LineHeader       LineKind = "HEADER"        // operation/crop context for subsequent lines
	LineDivisionData LineKind = "DIVISION_DATA" // division token plus numeric pair(s)
	LineUnknown      LineKind = "UNKNOWN"       // neither shape; surfaced as a diagnostic
)

// ClassifiedLine is one trimmed payload line with its classification.
type ClassifiedLine struct {
	Raw      string
	Kind     LineKind
	Position int // line index within the payload, zero-based
}

// pairTokenRe matches a measurement token: a number, optionally followed by
// "/total". The total side is deliberately loose ("26/abc" is still a data
// token; the unparsable side becomes null downstream).
var pairTokenRe = regexp.MustCompile(`^\d+(?:[.,]\d+)?(?:/\S+)?$`)

var digitRe = regexp.MustCompile(`\d`)

// dateLineRe recognizes a line that is nothing but a date token, e.g.
// "12.04" or "12.04.2025". Such lines carry context, not measurements.
var dateLineRe = regexp.MustCompile(`^\d{1,2}[./]\d{1,2}(?:[./]\d{2,4})?$`)

// isMeasurement reports whether a token carries values. A slashless dotted
// token in the date shape ("15.04") is a date, not a measurement; decimals
// in the reports use comma separators.
func isMeasurement(f string) bool {
	if !pairTokenRe.MatchString(f) {
		return false
	}
	if !strings.Contains(f, "/") && dateLineRe.MatchString(f) {
		return false
	}
	return true
}

// Tokenize splits a payload into classified lines. Pure function of the
// payload: no catalog access, no state across messages.
//
// A line is DivisionData when a measurement token appears after at least one
// leading text token (the division prefix). A line with no digits at all is
// a Header; headers may appear mid-payload and reset the carry-forward
// context. Everything else is Unknown and passed through for diagnostics.
func Tokenize(payload string) []ClassifiedLine {
	var out []ClassifiedLine
	for i, raw := range strings.Split(payload, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		out = append(out, ClassifiedLine{
			Raw:      line,
			Kind:     classify(line),
			Position: i,
		})
	}
	return out
}

func classify(line string) LineKind {
	if dateLineRe.MatchString(line) {
		return LineHeader
	}
	fields := strings.Fields(line)
	for i, f := range fields {
		if isMeasurement(f) {
			if i == 0 {
				// measurement with no division prefix
				return LineUnknown
			}
			return LineDivisionData
		}
	}
	// A date token inside a header ("Сев кукурузы 15.04") does not make the
	// line data; it is ignored when deciding headership.
	rest := fields[:0:0]
	for _, f := range fields {
		if !dateLineRe.MatchString(f) {
			rest = append(rest, f)
		}
	}
	if !digitRe.MatchString(strings.Join(rest, " ")) {
		return LineHeader
	}
	return LineUnknown
}
