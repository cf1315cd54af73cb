package featurizer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voicebox/nlu-engine/resources"
)

// fakeRegistry lets tests supply a stemmer/clusterer without touching the
// on-disk resource loader.
type fakeRegistry struct {
	stemmer    *resources.Stemmer
	clusterers map[string]*resources.WordClusterer
}

func (r fakeRegistry) Stemmer(string) *resources.Stemmer { return r.stemmer }

func (r fakeRegistry) WordClusterer(_, name string) *resources.WordClusterer {
	return r.clusterers[name]
}

func TestFeaturize_L2NormBoundedByOne(t *testing.T) {
	f := &Featurizer{
		Language: "en",
		Vocabulary: map[string]int{
			"hello": 0, "world": 1, "bird": 2,
		},
		IDF:          []float32{1, 1, 1},
		BestFeatures: []int{0, 1, 2},
	}
	out := Featurize(f, fakeRegistry{}, "hello hello world bird")

	var sumSq float64
	for _, v := range out {
		sumSq += float64(v) * float64(v)
	}
	require.LessOrEqual(t, math.Sqrt(sumSq), 1.0+1e-6)
}

func TestFeaturize_UnknownTokensIgnored(t *testing.T) {
	f := &Featurizer{
		Language:     "en",
		Vocabulary:   map[string]int{"bird": 0},
		IDF:          []float32{2},
		BestFeatures: []int{0},
	}
	out := Featurize(f, fakeRegistry{}, "a completely unrelated sentence")
	require.Equal(t, []float32{0}, out)
}

func TestFeaturize_SublinearScaling(t *testing.T) {
	f := &Featurizer{
		Language:     "en",
		Vocabulary:   map[string]int{"bird": 0},
		IDF:          []float32{2},
		BestFeatures: []int{0},
		Sublinear:    true,
	}
	out := Featurize(f, fakeRegistry{}, "bird bird bird")
	// tf = 3, sublinear = (log(3)+1) * 2, then L2-normalized against itself
	// (a single nonzero coordinate), which always yields 1 after norm>=1.
	require.InDelta(t, 1.0, out[0], 1e-6)
}

func TestFeaturize_ClusterFeatureContributes(t *testing.T) {
	clusterer := resources.NewWordClusterer("en", "brown", map[string]string{
		"bird": "c42",
	})
	f := &Featurizer{
		Language:     "en",
		Vocabulary:   map[string]int{"c42": 0},
		IDF:          []float32{1},
		BestFeatures: []int{0},
		ClusterName:  "brown",
	}
	reg := fakeRegistry{clusterers: map[string]*resources.WordClusterer{"brown": clusterer}}
	out := Featurize(f, reg, "the bird flew away")
	require.Greater(t, out[0], float32(0))
}

func TestFeaturize_EntityUtteranceFeatureContributes(t *testing.T) {
	f := &Featurizer{
		Language:   "en",
		Vocabulary: map[string]int{"ent:city": 0},
		IDF:        []float32{1},
		BestFeatures: []int{0},
		EntityUtterancesToFeatureNames: map[string][]string{
			"new york": {"ent:city"},
		},
	}
	out := Featurize(f, fakeRegistry{}, "flights to new york tomorrow")
	require.Greater(t, out[0], float32(0))
}

// TestFeaturize_ReferenceFixture exercises the literal scenario from the
// test-suite fixtures: the utterance "Hëllo this bïrd is a beautiful Bïrd"
// projected onto an 8-entry best-features vocabulary.
func TestFeaturize_ReferenceFixture(t *testing.T) {
	vocab := map[string]int{
		"hello": 0, "this": 1, "bird": 2, "is": 3,
		"a": 4, "beautiful": 5, "flies": 6, "blue": 7,
	}
	idf := []float32{1, 1, 0.5, 1, 1, 2, 3, 3}
	f := &Featurizer{
		Language:     "en",
		Vocabulary:   vocab,
		IDF:          idf,
		BestFeatures: []int{0, 1, 2, 3, 4, 5, 6, 7},
	}

	out := Featurize(f, fakeRegistry{}, "Hëllo this bïrd is a beautiful Bïrd")

	// hello:1, this:1, bird:2, is:1, a:1, beautiful:1, flies:0, blue:0
	raw := []float64{1 * 1, 1 * 1, 2 * 0.5, 1 * 1, 1 * 1, 1 * 2, 0, 0}
	var sumSq float64
	for _, v := range raw {
		sumSq += v * v
	}
	norm := math.Sqrt(sumSq)
	if norm < 1 {
		norm = 1
	}
	for i, v := range raw {
		require.InDelta(t, v/norm, out[i], 1e-6)
	}
}
