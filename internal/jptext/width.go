// Package jptext normalizes Japanese display names scraped from source
// sites: width folding and ruby annotation collapse. Sources mix half-width
// and full-width Latin forms freely, so everything is folded to full-width
// before storage and comparison.
package jptext

import (
	"strings"

	"golang.org/x/text/width"
)

// HalfToFull folds half-width Latin, digit, punctuation, and katakana forms
// to their full-width counterparts. ASCII space is kept as-is so set codes
// embedded in names stay splittable.
func HalfToFull(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)

	for _, r := range s {
		if r == ' ' {
			b.WriteRune(r)
			continue
		}
		b.WriteString(width.Widen.String(string(r)))
	}

	return b.String()
}
