// Package slot implements the CRF slot tagger and the built-in-entity
// aligner that merges its output with the ontology parser's detections.
package slot

import (
	"github.com/pkg/errors"

	"github.com/voicebox/nlu-engine/kernel"
	"github.com/voicebox/nlu-engine/ontology"
	"github.com/voicebox/nlu-engine/preprocessing"
	"github.com/voicebox/nlu-engine/resources"
	"github.com/voicebox/nlu-engine/tagging"
)

// Registry gives the tagger read access to gazetteers and word clusterers
// for the configured language.
type Registry interface {
	WordClusterer(language, name string) *resources.WordClusterer
	Gazetteer(language, name string) *resources.Gazetteer
}

// Tagger is a fitted linear-chain CRF: per-token emission features are
// looked up in a sparse weight table (one weight vector per feature,
// indexed by tag), summed per tag to build a dense T x K emission matrix,
// and decoded jointly with a dense K x K transition matrix via Viterbi.
type Tagger struct {
	Language string
	Scheme   tagging.Scheme

	// Tags lists every output tag in index order (matching the columns of
	// FeatureWeights' rows and of Transitions).
	Tags []string
	// BuiltinSlotNames names slots that are recognized by the ontology
	// parser rather than the CRF; any tag the CRF itself produces for one
	// of these slots is rewritten to the outside tag before the aligner
	// runs.
	BuiltinSlotNames map[string]struct{}

	// FeatureWeights maps a feature name (e.g. "word=book", "shape=Xxx") to
	// its per-tag weight row, length len(Tags).
	FeatureWeights map[string][]float32
	// Transitions is len(Tags) x len(Tags); Transitions.At(i, j) is the
	// weight of moving from Tags[i] to Tags[j].
	Transitions *kernel.Matrix

	// GazetteerNames and ClusterNames list the gazetteers/clusterers
	// consulted for membership features, in no particular order.
	GazetteerNames []string
	ClusterNames   []string
}

// ComputeEmissions builds the dense T x K emission matrix Predict feeds to
// Viterbi, by summing each token's active feature weights per tag. It is
// exported so the slot aligner can score its own candidate tag sequences
// against the same emissions Predict used.
func ComputeEmissions(t *Tagger, reg Registry, tokens []preprocessing.Token, detections []ontology.Detection) (*kernel.Matrix, error) {
	k := len(t.Tags)
	emissions := make([]float32, len(tokens)*k)
	for i := range tokens {
		for _, feat := range tokenFeatures(t, reg, tokens, i, detections) {
			row, ok := t.FeatureWeights[feat]
			if !ok {
				continue
			}
			for j := 0; j < k && j < len(row); j++ {
				emissions[i*k+j] += row[j]
			}
		}
	}
	return kernel.NewMatrix(emissions, len(tokens), k)
}

// Predict returns one tag per token, using t's configured scheme.
// detections supplies the ontology parser's built-in-entity spans so the
// tagger can use a "builtin entity present" feature; it may be nil.
func Predict(t *Tagger, reg Registry, tokens []preprocessing.Token, detections []ontology.Detection) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	if len(t.Tags) == 0 {
		return nil, errors.New("slot: tagger has no configured tags")
	}

	emissionMatrix, err := ComputeEmissions(t, reg, tokens, detections)
	if err != nil {
		return nil, err
	}
	if t.Transitions == nil || t.Transitions.Rows() != len(t.Tags) || t.Transitions.Cols() != len(t.Tags) {
		return nil, errors.New("slot: transition matrix shape does not match tag set")
	}

	path, _, err := kernel.ViterbiDecode(emissionMatrix, t.Transitions)
	if err != nil {
		return nil, err
	}

	tags := make([]string, len(path))
	for i, idx := range path {
		tag := t.Tags[idx]
		if _, builtin := t.BuiltinSlotNames[tagging.SlotName(tag)]; builtin {
			tag = tagging.OutsideTag
		}
		tags[i] = tag
	}
	return tags, nil
}

func tokenFeatures(t *Tagger, reg Registry, tokens []preprocessing.Token, i int, detections []ontology.Detection) []string {
	tok := tokens[i]
	feats := []string{
		"word=" + tok.NormalizedValue,
		"shape=" + preprocessing.Shape(tok.Value),
	}

	const chunkLen = 3
	runes := []rune(tok.NormalizedValue)
	if n := len(runes); n > 0 {
		pl := chunkLen
		if pl > n {
			pl = n
		}
		feats = append(feats, "prefix="+string(runes[:pl]))
		feats = append(feats, "suffix="+string(runes[n-pl:]))
	}

	for _, name := range t.GazetteerNames {
		gaz := reg.Gazetteer(t.Language, name)
		if gaz != nil && gaz.Contains(tok.NormalizedValue) {
			feats = append(feats, "gaz="+name)
		}
	}
	for _, name := range t.ClusterNames {
		clusterer := reg.WordClusterer(t.Language, name)
		if clusterer == nil {
			continue
		}
		if id, ok := clusterer.ClusterID(tok.NormalizedValue); ok {
			feats = append(feats, "cluster="+name+"="+id)
		}
	}

	for _, d := range detections {
		if d.CharRange.Start <= tok.CharRange.Start && tok.CharRange.End <= d.CharRange.End {
			feats = append(feats, "builtin="+d.Kind.ModelIdentifier())
			break
		}
	}

	if isFirstSignificant(tokens, i) {
		feats = append(feats, "is_first")
	}
	if isLastSignificant(tokens, i) {
		feats = append(feats, "is_last")
	}

	return feats
}

// isFirstSignificant / isLastSignificant implement the "after skipping
// ,.?" positional flags: a token counts as first/last if every token
// before/after it (to the edge of the sequence) is one of the skipped
// punctuation marks.
func isFirstSignificant(tokens []preprocessing.Token, i int) bool {
	for j := 0; j < i; j++ {
		if !isSkippedPunctuation(tokens[j].Value) {
			return false
		}
	}
	return true
}

func isLastSignificant(tokens []preprocessing.Token, i int) bool {
	for j := i + 1; j < len(tokens); j++ {
		if !isSkippedPunctuation(tokens[j].Value) {
			return false
		}
	}
	return true
}

func isSkippedPunctuation(v string) bool {
	return v == "," || v == "." || v == "?"
}
