// Package phone holds the comparison-key normalizer for phone-like fields.
package phone

import "strings"

// Normalize strips whitespace, parentheses, hyphens and dots from a raw
// phone-like string, keeping digits and a leading plus sign. The result is a
// comparison key, not a canonical number: no country-code insertion happens,
// so "0812..." and "+62812..." deliberately stay distinct.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+':
			b.WriteRune(r)
		}
	}
	return b.String()
}
