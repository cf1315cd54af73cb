// Package featurizer turns a raw utterance into the dense feature vector
// the intent classifier consumes: a TF-IDF bag-of-words projection
// augmented with word-cluster and entity-utterance features.
package featurizer

import (
	"math"
	"strings"

	"github.com/voicebox/nlu-engine/preprocessing"
	"github.com/voicebox/nlu-engine/resources"
)

// Featurizer holds the fitted vocabulary and IDF weights for one language,
// plus the optional cluster and entity-utterance augmentations. It is
// immutable after construction and safe for concurrent use.
type Featurizer struct {
	Language string

	// Vocabulary maps a processed token (or n-gram, for entity-utterance
	// feature names) to its dense index in [0, V).
	Vocabulary map[string]int
	// IDF holds one inverse-document-frequency weight per vocabulary entry,
	// indexed the same way as Vocabulary's values.
	IDF []float32
	// BestFeatures is the subset of vocabulary indices retained in the
	// projected output vector, in output order.
	BestFeatures []int
	// Sublinear switches the TF term from raw count to log(count)+1.
	Sublinear bool

	// EntityUtterancesToFeatureNames maps a known entity utterance
	// (n-gram, normalized+stemmed) to the feature names it contributes.
	EntityUtterancesToFeatureNames map[string][]string

	// ClusterName, if non-empty, names the word clusterer to consult for
	// cluster-id augmentation.
	ClusterName string

	// MaxNgramLength caps the n-gram window used for cluster and
	// entity-utterance lookups (default 8; NgramsUpTo already shrinks this
	// to the sentence length for shorter utterances, so the effective cap
	// is min(8, sentence length)).
	MaxNgramLength int
}

// Registry gives the featurizer read access to stemmers and word
// clusterers for the configured language, without binding it to a
// concrete *resources.Registry so tests can supply a fake.
type Registry interface {
	Stemmer(language string) *resources.Stemmer
	WordClusterer(language, name string) *resources.WordClusterer
}

const defaultMaxNgramLength = 8

// Featurize runs the full pipeline and returns the dense projected feature
// vector of length len(f.BestFeatures).
func Featurize(f *Featurizer, reg Registry, utterance string) []float32 {
	tokens := preprocessing.Tokenize(utterance, f.Language)

	maxLen := f.MaxNgramLength
	if maxLen <= 0 {
		maxLen = defaultMaxNgramLength
	}

	stemmer := reg.Stemmer(f.Language)
	processed := make([]string, len(tokens))
	for i, tok := range tokens {
		v := tok.NormalizedValue
		if stemmer != nil {
			v = stemmer.Stem(v)
		}
		processed[i] = v
	}

	tfidf := make([]float32, len(f.Vocabulary))

	// Step 2: cluster features, computed over n-grams of the *original*
	// tokens, lowercased (not normalized/stemmed).
	if f.ClusterName != "" {
		clusterer := reg.WordClusterer(f.Language, f.ClusterName)
		if clusterer != nil {
			lowered := make([]preprocessing.Token, len(tokens))
			for i, tok := range tokens {
				lowered[i] = preprocessing.Token{NormalizedValue: strings.ToLower(tok.Value)}
			}
			for _, ng := range preprocessing.NgramsUpTo(lowered, maxLen) {
				if id, ok := clusterer.ClusterID(ng.NormalizedValue); ok {
					addTerm(f.Vocabulary, tfidf, id)
				}
			}
		}
	}

	// Step 3: entity-utterance features, computed over n-grams of the
	// processed (normalized + stemmed) tokens.
	if len(f.EntityUtterancesToFeatureNames) > 0 {
		processedTokens := make([]preprocessing.Token, len(tokens))
		for i, tok := range tokens {
			processedTokens[i] = preprocessing.Token{NormalizedValue: processed[i]}
		}
		for _, ng := range preprocessing.NgramsUpTo(processedTokens, maxLen) {
			names, ok := f.EntityUtterancesToFeatureNames[ng.NormalizedValue]
			if !ok {
				continue
			}
			for _, name := range names {
				addTerm(f.Vocabulary, tfidf, preprocessing.Normalize(name))
			}
		}
	}

	// Step 4: raw token TF-IDF.
	for _, tok := range processed {
		addTerm(f.Vocabulary, tfidf, tok)
	}
	for i, idf := range f.IDF {
		if tfidf[i] == 0 {
			continue
		}
		if f.Sublinear {
			tfidf[i] = float32(math.Log(float64(tfidf[i]))+1) * idf
		} else {
			tfidf[i] *= idf
		}
	}

	// Step 5: L2-normalize.
	var sumSq float64
	for _, v := range tfidf {
		sumSq += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSq)
	if norm < 1 {
		norm = 1
	}
	for i := range tfidf {
		tfidf[i] = float32(float64(tfidf[i]) / norm)
	}

	// Step 6: project onto best_features.
	out := make([]float32, len(f.BestFeatures))
	for k, idx := range f.BestFeatures {
		out[k] = tfidf[idx]
	}
	return out
}

func addTerm(vocab map[string]int, tfidf []float32, term string) {
	idx, ok := vocab[term]
	if !ok {
		return
	}
	tfidf[idx]++
}
