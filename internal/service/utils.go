package service

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// sanitizeUTF8 removes invalid UTF-8 sequences from model-produced text
// before it is persisted.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	var result strings.Builder
	result.Grow(len(s))

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		result.WriteRune(r)
		s = s[size:]
	}

	return result.String()
}

func roundToOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

// parseUploadDate tolerates records with unparsable upload dates by sorting
// them last.
func parseUploadDate(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
