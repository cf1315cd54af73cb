package ontology

import (
	"regexp"

	"github.com/voicebox/nlu-engine/preprocessing"
)

// RegexParser is a minimal reference Parser implementation: it recognizes
// bare integers as Number detections and a closed set of English ordinal
// words as Ordinal detections. It exists so the engine and its tests have a
// usable built-in-entity parser without depending on a full external
// ontology recognizer; production deployments are expected to supply
// their own Parser.
type RegexParser struct{}

var numberPattern = regexp.MustCompile(`[0-9]+`)

var ordinalWords = map[string]struct{}{
	"first": {}, "second": {}, "third": {}, "fourth": {}, "fifth": {},
	"sixth": {}, "seventh": {}, "eighth": {}, "ninth": {}, "tenth": {},
}

var wordPattern = regexp.MustCompile(`\p{L}+`)

// Extract implements Parser.
func (RegexParser) Extract(text string, language string, scope []Kind) ([]Detection, error) {
	_ = language
	wantNumber := inScope(scope, KindNumber)
	wantOrdinal := inScope(scope, KindOrdinal)

	var detections []Detection

	if wantNumber {
		for _, loc := range numberPattern.FindAllStringIndex(text, -1) {
			detections = append(detections, Detection{
				Value:     text[loc[0]:loc[1]],
				CharRange: byteLocToCharRange(text, loc[0], loc[1]),
				Kind:      KindNumber,
			})
		}
	}

	if wantOrdinal {
		for _, loc := range wordPattern.FindAllStringIndex(text, -1) {
			word := preprocessing.Normalize(text[loc[0]:loc[1]])
			if _, ok := ordinalWords[word]; ok {
				detections = append(detections, Detection{
					Value:     text[loc[0]:loc[1]],
					CharRange: byteLocToCharRange(text, loc[0], loc[1]),
					Kind:      KindOrdinal,
				})
			}
		}
	}

	return detections, nil
}

func inScope(scope []Kind, k Kind) bool {
	if len(scope) == 0 {
		return true
	}
	for _, s := range scope {
		if s == k {
			return true
		}
	}
	return false
}

// byteLocToCharRange converts a [start,end) byte range of text into the
// equivalent rune-index range.
func byteLocToCharRange(text string, byteStart, byteEnd int) preprocessing.CharRange {
	charStart, charEnd := -1, -1
	charIdx := 0
	for i := range text {
		if i == byteStart {
			charStart = charIdx
		}
		if i == byteEnd {
			charEnd = charIdx
		}
		charIdx++
	}
	if charStart < 0 {
		charStart = charIdx
	}
	if charEnd < 0 {
		charEnd = charIdx
	}
	return preprocessing.CharRange{Start: charStart, End: charEnd}
}

var _ Parser = RegexParser{}
