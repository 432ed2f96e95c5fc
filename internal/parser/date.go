package parser

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	isoDateRe = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)
	dmDateRe  = regexp.MustCompile(`(\d{1,2})[./](\d{1,2})(?:[./](\d{2,4}))?`)
)

// ParseDate normalizes a date string to the output form "DD.MM". Accepts
// ISO 8601 (YYYY-MM-DD) and the report shorthand DD.MM, DD.MM.YY, DD.MM.YYYY.
func ParseDate(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return formatDayMonth(day, month)
	}
	if m := dmDateRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return formatDayMonth(day, month)
	}
	return "", false
}

// FindDate scans free text for the first recognizable date token.
func FindDate(text string) (string, bool) {
	if m := dmDateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return formatDayMonth(day, month)
	}
	return "", false
}

func formatDayMonth(day, month int) (string, bool) {
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", false
	}
	return fmt.Sprintf("%02d.%02d", day, month), true
}
