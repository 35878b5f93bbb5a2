// Package datecode turns free-form date input into the 8-digit code the
// price backend expects.
package datecode

import (
	"regexp"
	"strings"
	"time"
)

// Default is used when the input is empty.
const Default = "20251001"

var (
	isoDate   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	eightDigs = regexp.MustCompile(`^\d{8}$`)
	nonDigits = regexp.MustCompile(`[^0-9]`)
)

// Normalize returns an 8-character digit code for raw. It never fails; the
// result is not necessarily a valid calendar date.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case isoDate.MatchString(raw):
		return strings.ReplaceAll(raw, "-", "")
	case eightDigs.MatchString(raw):
		return raw
	case raw != "":
		return (nonDigits.ReplaceAllString(raw, "") + "00000000")[:8]
	default:
		return Default
	}
}

// Title formats a code as DD.MM.YYYY, or returns "" when code is not eight digits.
func Title(code string) string {
	if !eightDigs.MatchString(code) {
		return ""
	}
	return code[6:8] + "." + code[4:6] + "." + code[0:4]
}

// ChartTitle is the heading shown above the chart.
func ChartTitle(raw, code string) string {
	if t := Title(code); t != "" {
		return "Diagramm für " + t
	}
	if raw != "" {
		return "Diagramm für " + raw
	}
	return "Diagramm für " + code
}

// FromTime returns the code for t's calendar day in t's location.
func FromTime(t time.Time) string {
	return t.Format("20060102")
}

// Today returns the code for the current local day.
func Today() string {
	return FromTime(time.Now())
}
