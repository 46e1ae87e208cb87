package faq

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented characters and drops the combining marks,
// so "horário" folds to "horario".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes question text for comparison: lower-case, strip
// diacritics, drop punctuation, collapse whitespace. It is pure and
// idempotent; whitespace-only input normalizes to the empty string.
func Normalize(q string) string {
	lowered := strings.ToLower(strings.TrimSpace(q))
	if folded, _, err := transform.String(stripMarks, lowered); err == nil {
		lowered = folded
	}
	var builder strings.Builder
	builder.Grow(len(lowered))
	lastSpace := true
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
			lastSpace = false
			continue
		}
		// whitespace and punctuation both act as token separators
		if !lastSpace {
			builder.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(builder.String())
}
