package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize_PreservesByteRanges(t *testing.T) {
	text := "Book a table for 2, please!"
	tokens := Tokenize(text, "en")
	require.NotEmpty(t, tokens)
	for _, tok := range tokens {
		require.Equal(t, tok.Value, text[tok.ByteRange.Start:tok.ByteRange.End])
	}
}

func TestTokenize_SplitsPunctuationIntoOwnTokens(t *testing.T) {
	tokens := Tokenize("hello, world!", "en")
	var values []string
	for _, tok := range tokens {
		values = append(values, tok.Value)
	}
	require.Equal(t, []string{"hello", ",", "world", "!"}, values)
}

func TestTokenize_UnicodeByteOffsets(t *testing.T) {
	text := "Hëllo bïrd"
	tokens := Tokenize(text, "en")
	require.Len(t, tokens, 2)
	require.Equal(t, "Hëllo", tokens[0].Value)
	require.Equal(t, text[tokens[0].ByteRange.Start:tokens[0].ByteRange.End], tokens[0].Value)
	require.Equal(t, "bïrd", tokens[1].Value)
}

func TestShape(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"héllo", "xxx"},
		{"Héllo", "Xxx"},
		{"HÉLLO", "XXX"},
		{"hélLo", "xX"},
		{"!!", "xX"},
		{"Éllo", "Xxx"},
		{"É", "XXX"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Shape(c.in), "Shape(%q)", c.in)
	}
}

func TestNgrams(t *testing.T) {
	tokens := []Token{
		{NormalizedValue: "light"},
		{NormalizedValue: "blue"},
		{NormalizedValue: "bird"},
	}
	ngrams := Ngrams(tokens)
	seen := map[string]bool{}
	for _, g := range ngrams {
		seen[g.NormalizedValue] = true
	}
	require.True(t, seen["light"])
	require.True(t, seen["light blue"])
	require.True(t, seen["light blue bird"])
	require.True(t, seen["blue bird"])
	require.Len(t, ngrams, 6) // 3 unigrams + 2 bigrams + 1 trigram
}
