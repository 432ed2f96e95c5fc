package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/mkuznetsov-agro/agroreport/internal/catalog"
	"github.com/mkuznetsov-agro/agroreport/internal/entity"
)

// connector words that separate an operation from its crop in header lines.
var connectorWords = map[string]bool{
	"под": true,
	"по":  true,
	"на":  true,
}

var bareIntRe = regexp.MustCompile(`^\d+$`)

// Extractor applies pattern rules to classified lines and produces candidate
// records. It consults the catalog vocabulary for recognition only; canonical
// resolution happens in the validator.
type Extractor struct {
	cat catalog.Catalog
	log *slog.Logger
}

func NewExtractor(cat catalog.Catalog, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cat: cat, log: logger}
}

// Extract walks the classified lines of one message in order, carrying the
// most recent header's operation/crop as defaults for data lines. Returns
// the candidate records plus the lines that fit no recognizable shape.
//
// A data line before any header yields a candidate with empty operation and
// crop; the corrector decides what to do with it. A new header resets the
// context entirely, even when it names only an operation.
func (e *Extractor) Extract(date string, lines []ClassifiedLine) ([]entity.CandidateRecord, []ClassifiedLine) {
	var records []entity.CandidateRecord
	var unclassified []ClassifiedLine
	var opRaw, cropRaw string

	for _, ln := range lines {
		switch ln.Kind {
		case LineHeader:
			if dateLineRe.MatchString(ln.Raw) {
				continue // date-only line, handled by the pipeline pre-scan
			}
			op, crop, ok := e.parseHeader(ln.Raw)
			if !ok {
				unclassified = append(unclassified, ln)
				continue
			}
			opRaw, cropRaw = op, crop
		case LineDivisionData:
			div, quad, malformed := e.parseData(ln.Raw)
			records = append(records, entity.CandidateRecord{
				Date:             date,
				DivisionRaw:      div,
				OperationRaw:     opRaw,
				CropRaw:          cropRaw,
				DailyArea:        quad[0],
				TotalArea:        quad[1],
				DailyYield:       quad[2],
				TotalYield:       quad[3],
				SourceLine:       ln.Position,
				MalformedNumeric: malformed,
			})
		default:
			unclassified = append(unclassified, ln)
		}
	}
	return records, unclassified
}

// parseHeader pulls the operation and crop hints out of a header line.
// The operation is the longest catalog term prefixing the line; the crop is
// the longest catalog term contained anywhere in it. When the vocabulary
// gives nothing, the text around the first connector word is kept as a raw
// hint for fuzzy resolution downstream.
func (e *Extractor) parseHeader(line string) (opRaw, cropRaw string, ok bool) {
	n := normalizeLine(line)
	if n == "" {
		return "", "", false
	}

	opRaw = longestPrefixTerm(n, e.cat.OperationTerms())
	cropRaw = longestContainedTerm(n, e.cat.CropTerms())

	if opRaw == "" || cropRaw == "" {
		before, after := splitAtConnector(n)
		if opRaw == "" {
			opRaw = before
		}
		if cropRaw == "" {
			cropRaw = after
		}
	}

	// Leftover after a recognized operation can still be the crop hint
	// ("сев озимой пшеницы" with an out-of-vocabulary crop spelling).
	if cropRaw == "" && opRaw != "" && strings.HasPrefix(n, opRaw) {
		rest := strings.TrimSpace(n[len(opRaw):])
		cropRaw = stripLeadingConnectors(rest)
	}

	opRaw = strings.TrimSpace(opRaw)
	cropRaw = strings.TrimSpace(cropRaw)
	return opRaw, cropRaw, opRaw != "" || cropRaw != ""
}

// numericQuad is dailyArea, totalArea, dailyYield, totalYield.
type numericQuad [4]*float64

// parseData splits a division/data line into the division token and up to
// two daily/total pairs. The first pair is area, the second is yield.
func (e *Extractor) parseData(line string) (divisionRaw string, quad numericQuad, malformed bool) {
	fields := strings.Fields(line)
	first := len(fields)
	for i, f := range fields {
		if isMeasurement(f) {
			first = i
			break
		}
	}

	// A bare integer followed by another measurement token is a sub-unit
	// number, not a measurement: "Отд 12 26/221" names division "Отд 12".
	for first < len(fields)-1 &&
		bareIntRe.MatchString(fields[first]) &&
		isMeasurement(fields[first+1]) {
		first++
	}

	// A department word alone does not name a division; a trailing bare
	// number completes it, so "Отд 7" carries no measurement at all.
	if first > 0 && first == len(fields)-1 &&
		bareIntRe.MatchString(fields[first]) &&
		isDeptWord(fields[first-1]) {
		first++
	}

	divTokens := fields[:first]
	// "По <name>" marks a production-unit summary row; the marker itself is
	// not part of the division name.
	if len(divTokens) > 1 && strings.EqualFold(divTokens[0], "по") {
		divTokens = divTokens[1:]
	}
	divisionRaw = strings.Join(divTokens, " ")

	pairIdx := 0
	for _, f := range fields[first:] {
		if !isMeasurement(f) {
			continue
		}
		if pairIdx >= 2 {
			e.log.Debug("extractor.extra_pair_ignored", "line", line, "token", f)
			break
		}
		daily, total, bad := parsePair(f)
		quad[pairIdx*2] = daily
		quad[pairIdx*2+1] = total
		malformed = malformed || bad
		pairIdx++
	}
	return divisionRaw, quad, malformed
}

// parsePair parses "daily/total". A bare number is daily with null total;
// an unparsable side becomes null and flags the record as malformed.
func parsePair(tok string) (daily, total *float64, malformed bool) {
	left, right, hasTotal := strings.Cut(tok, "/")
	daily, dok := parseNumber(left)
	malformed = !dok
	if hasTotal {
		var tok2 bool
		total, tok2 = parseNumber(right)
		malformed = malformed || !tok2
	}
	return daily, total, malformed
}

// parseNumber tolerates comma decimal separators.
func parseNumber(s string) (*float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return nil, false
	}
	return &v, true
}

func isDeptWord(w string) bool {
	w = strings.TrimRight(strings.ToLower(w), ".")
	return w == "отд" || w == "отделение"
}

func normalizeLine(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// longestPrefixTerm returns the longest term that prefixes n at a word
// boundary. Terms must be pre-sorted longest first, as the catalog does.
func longestPrefixTerm(n string, terms []string) string {
	for _, t := range terms {
		if n == t || strings.HasPrefix(n, t+" ") {
			return t
		}
	}
	return ""
}

// longestContainedTerm returns the longest term appearing in n on word
// boundaries.
func longestContainedTerm(n string, terms []string) string {
	for _, t := range terms {
		if n == t ||
			strings.HasPrefix(n, t+" ") ||
			strings.HasSuffix(n, " "+t) ||
			strings.Contains(n, " "+t+" ") {
			return t
		}
	}
	return ""
}

// splitAtConnector cuts the line at the first connector word; before is the
// operation hint, after is the crop hint.
func splitAtConnector(n string) (before, after string) {
	words := strings.Fields(n)
	for i, w := range words {
		if i > 0 && connectorWords[w] {
			return strings.Join(words[:i], " "), strings.Join(words[i+1:], " ")
		}
	}
	return n, ""
}

func stripLeadingConnectors(s string) string {
	words := strings.Fields(s)
	for len(words) > 0 && connectorWords[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}
