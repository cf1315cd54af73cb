package preprocessing

import "strings"

// Ngram is a contiguous run of tokens joined by a single space in their
// normalized form, together with the indices of the tokens it spans.
type Ngram struct {
	NormalizedValue string
	TokenIndexes    []int
}

// Ngrams returns every contiguous sub-sequence of tokens, lengths 1..n,
// joining normalized values with a space. Ordering between n-grams of
// different (start, length) is unspecified; callers that need uniqueness
// deduplicate themselves.
func Ngrams(tokens []Token) []Ngram {
	n := len(tokens)
	var out []Ngram
	for start := 0; start < n; start++ {
		var b strings.Builder
		indexes := make([]int, 0, n-start)
		for length := 1; start+length <= n; length++ {
			idx := start + length - 1
			if length > 1 {
				b.WriteByte(' ')
			}
			b.WriteString(tokens[idx].NormalizedValue)
			indexes = append(indexes, idx)
			out = append(out, Ngram{
				NormalizedValue: b.String(),
				TokenIndexes:    append([]int(nil), indexes...),
			})
		}
	}
	return out
}

// NgramsUpTo is Ngrams restricted to n-grams of length <= maxLen. A
// non-positive maxLen means no limit.
func NgramsUpTo(tokens []Token, maxLen int) []Ngram {
	if maxLen <= 0 {
		return Ngrams(tokens)
	}
	n := len(tokens)
	var out []Ngram
	for start := 0; start < n; start++ {
		var b strings.Builder
		indexes := make([]int, 0, maxLen)
		for length := 1; length <= maxLen && start+length <= n; length++ {
			idx := start + length - 1
			if length > 1 {
				b.WriteByte(' ')
			}
			b.WriteString(tokens[idx].NormalizedValue)
			indexes = append(indexes, idx)
			out = append(out, Ngram{
				NormalizedValue: b.String(),
				TokenIndexes:    append([]int(nil), indexes...),
			})
		}
	}
	return out
}
