// Package preprocessing implements the shared tokenization and
// normalization layer both parsers run over: splitting an utterance into
// tokens with original byte/char offsets, normalizing token text, and
// producing the n-gram indices the featurizer and slot tagger consume.
package preprocessing

// ByteRange is a half-open byte offset range [Start, End) into the original
// input string.
type ByteRange struct {
	Start int
	End   int
}

// CharRange is a half-open rune-index range [Start, End) into the original
// input string, counted in runes rather than bytes.
type CharRange struct {
	Start int
	End   int
}

// Token is one tokenized word with its surface form, normalized form, and
// its location in the original text expressed both in bytes (for slicing
// the original string directly) and in characters (for aligning with
// built-in entity detections, which are reported in character offsets).
type Token struct {
	Value           string
	NormalizedValue string
	ByteRange       ByteRange
	CharRange       CharRange
}
