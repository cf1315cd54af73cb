package intent

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voicebox/nlu-engine/featurizer"
	"github.com/voicebox/nlu-engine/kernel"
	"github.com/voicebox/nlu-engine/resources"
)

type emptyRegistry struct{}

func (emptyRegistry) Stemmer(string) *resources.Stemmer                  { return nil }
func (emptyRegistry) WordClusterer(string, string) *resources.WordClusterer { return nil }

func TestClassify_EmptyIntentListRejects(t *testing.T) {
	c := &Classifier{}
	res, err := Classify(c, emptyRegistry{}, "book a table")
	require.NoError(t, err)
	require.True(t, res.Rejected())
}

func TestClassify_MissingFeaturizerRejects(t *testing.T) {
	c := &Classifier{IntentList: []string{"bookRestaurant", "cancelReservation"}}
	res, err := Classify(c, emptyRegistry{}, "book a table")
	require.NoError(t, err)
	require.True(t, res.Rejected())
}

func TestClassify_SingleIntentAlwaysWinsWithCertainty(t *testing.T) {
	f := &featurizer.Featurizer{
		Language:     "en",
		Vocabulary:   map[string]int{"book": 0},
		IDF:          []float32{1},
		BestFeatures: []int{0},
	}
	c := &Classifier{
		Featurizer: f,
		IntentList: []string{"bookRestaurant"},
	}
	res, err := Classify(c, emptyRegistry{}, "anything at all")
	require.NoError(t, err)
	require.Equal(t, "bookRestaurant", res.Name)
	require.Equal(t, float32(1.0), res.Probability)
}

func TestClassify_SingleSentinelIntentRejects(t *testing.T) {
	f := &featurizer.Featurizer{Vocabulary: map[string]int{}, BestFeatures: nil}
	c := &Classifier{Featurizer: f, IntentList: []string{NoIntent}}
	res, err := Classify(c, emptyRegistry{}, "hi")
	require.NoError(t, err)
	require.True(t, res.Rejected())
}

func TestClassify_PicksArgmaxWithProbabilityInUnitRange(t *testing.T) {
	f := &featurizer.Featurizer{
		Language:     "en",
		Vocabulary:   map[string]int{"book": 0, "cancel": 1},
		IDF:          []float32{1, 1},
		BestFeatures: []int{0, 1},
	}
	// Two features, three classes (third is the sentinel "no intent").
	w, err := kernel.NewMatrix([]float32{
		5, 0, 0,
		0, 5, 0,
	}, 2, 3)
	require.NoError(t, err)
	c := &Classifier{
		Featurizer: f,
		IntentList: []string{"bookRestaurant", "cancelReservation", NoIntent},
		Weights:    w,
		Intercept:  []float32{0, 0, 0},
	}
	res, err := Classify(c, emptyRegistry{}, "book book book")
	require.NoError(t, err)
	require.Equal(t, "bookRestaurant", res.Name)
	require.GreaterOrEqual(t, res.Probability, float32(0))
	require.LessOrEqual(t, res.Probability, float32(1))
}
