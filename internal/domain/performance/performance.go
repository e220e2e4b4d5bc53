// Package performance turns free-text performance entries ("12.4m",
// "3,25", " 7 kg ") into numeric magnitudes.
package performance

import (
	"strconv"
	"strings"
	"unicode"
)

// Parse returns the magnitude of raw, or 0 when nothing numeric remains
// after units are stripped. It never fails.
func Parse(raw string) float64 {
	v, _ := ParseValue(raw)
	return v
}

// ParseValue is Parse with an explicit marker: ok is false when raw is
// unparseable, letting callers tell a recorded zero from missing data.
//
// Letters are removed, the first decimal comma becomes a period and the
// residue is trimmed before parsing. No unit conversion takes place.
func ParseValue(raw string) (float64, bool) {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return -1
		}
		return r
	}, strings.ToLower(raw))
	stripped = strings.TrimSpace(strings.Replace(stripped, ",", ".", 1))
	if stripped == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
