package preprocessing

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize performs Unicode canonical decomposition (NFD), strips combining
// marks (U+0300-U+036F), and lowercases ASCII letters.
func Normalize(s string) string {
	decomposed := norm.NFD.String(s)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r >= 0x0300 && r <= 0x036F {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			r = r - 'A' + 'a'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Shape classifies the casing pattern of s:
//
//	all lowercase             -> "xxx"
//	all uppercase             -> "XXX"
//	first upper, rest lower   -> "Xxx"
//	anything else (or empty)  -> "xX"
func Shape(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return "xX"
	}

	var hasLower, hasUpper bool
	for _, r := range runes {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	if hasLower && !hasUpper {
		return "xxx"
	}
	if hasUpper && !hasLower {
		return "XXX"
	}
	if unicode.IsUpper(runes[0]) {
		rest := runes[1:]
		restAllLower := true
		for _, r := range rest {
			if unicode.IsUpper(r) {
				restAllLower = false
				break
			}
		}
		if restAllLower {
			return "Xxx"
		}
	}
	return "xX"
}
