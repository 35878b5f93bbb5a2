package ingest

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var nonNumeric = regexp.MustCompile(`[^0-9.\-+eE]`)

// CoercePrice converts a backend price value to a float. Strings may use a
// decimal comma and carry units or currency symbols ("€ 7,3"). Missing, null
// or unparsable values yield NaN.
func CoercePrice(v any) float64 {
	if s, ok := v.(string); ok {
		s = strings.ReplaceAll(s, ",", ".")
		s = nonNumeric.ReplaceAllString(s, "")
		if s == "" {
			return math.NaN()
		}
		return parseFloat(s)
	}
	return CoerceNumber(v)
}

// CoerceNumber converts v the way a loosely typed client would: numbers pass
// through, booleans become 0/1, numeric strings are parsed (blank is 0) and
// everything else is NaN.
func CoerceNumber(v any) float64 {
	switch t := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		return parseFloat(t.String())
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}
		return parseFloat(s)
	default:
		return math.NaN()
	}
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
