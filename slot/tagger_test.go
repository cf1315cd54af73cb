package slot

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voicebox/nlu-engine/kernel"
	"github.com/voicebox/nlu-engine/preprocessing"
	"github.com/voicebox/nlu-engine/resources"
	"github.com/voicebox/nlu-engine/tagging"
)

type fakeRegistry struct {
	gazetteers map[string]*resources.Gazetteer
}

func (r fakeRegistry) WordClusterer(string, string) *resources.WordClusterer { return nil }
func (r fakeRegistry) Gazetteer(_, name string) *resources.Gazetteer         { return r.gazetteers[name] }

func tok(value string, byteStart int) preprocessing.Token {
	return preprocessing.Token{
		Value:           value,
		NormalizedValue: preprocessing.Normalize(value),
		ByteRange:       preprocessing.ByteRange{Start: byteStart, End: byteStart + len(value)},
		CharRange:       preprocessing.CharRange{Start: byteStart, End: byteStart + len(value)},
	}
}

func TestPredict_EmptyTokensReturnsNil(t *testing.T) {
	tagger := &Tagger{Tags: []string{tagging.OutsideTag}}
	tags, err := Predict(tagger, fakeRegistry{}, nil, nil)
	require.NoError(t, err)
	require.Nil(t, tags)
}

func TestPredict_SimpleSlotViaFeatureWeights(t *testing.T) {
	tags := []string{tagging.OutsideTag, "B-animal", "I-animal"}
	transitions, err := kernel.NewMatrix([]float32{
		0, 1, 0,
		0, 0, 1,
		0, 0, 0,
	}, 3, 3)
	require.NoError(t, err)

	tagger := &Tagger{
		Language: "en",
		Scheme:   tagging.SchemeBIO,
		Tags:     tags,
		FeatureWeights: map[string][]float32{
			"word=the":  {5, 0, 0},
			"word=blue": {0, 5, 0},
			"word=bird": {0, 0, 5},
		},
		Transitions: transitions,
	}

	tokens := []preprocessing.Token{tok("the", 0), tok("blue", 4), tok("bird", 9)}
	result, err := Predict(tagger, fakeRegistry{}, tokens, nil)
	require.NoError(t, err)
	require.Equal(t, []string{tagging.OutsideTag, "B-animal", "I-animal"}, result)
}

func TestPredict_BuiltinTagsRewrittenToOutside(t *testing.T) {
	tags := []string{tagging.OutsideTag, "U-snips/number"}
	transitions, err := kernel.NewMatrix([]float32{0, 0, 0, 0}, 2, 2)
	require.NoError(t, err)
	tagger := &Tagger{
		Tags: tags,
		FeatureWeights: map[string][]float32{
			"word=two": {0, 10},
		},
		Transitions:      transitions,
		BuiltinSlotNames: map[string]struct{}{"snips/number": {}},
	}
	result, err := Predict(tagger, fakeRegistry{}, []preprocessing.Token{tok("two", 0)}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{tagging.OutsideTag}, result)
}

func TestPredict_PositionalFeaturesContribute(t *testing.T) {
	tags := []string{tagging.OutsideTag, "U-animal"}
	transitions, err := kernel.NewMatrix([]float32{0, 0, 0, 0}, 2, 2)
	require.NoError(t, err)
	tagger := &Tagger{
		Tags: tags,
		FeatureWeights: map[string][]float32{
			"is_first": {0, 1},
			"is_last":  {0, 1},
		},
		Transitions: transitions,
	}
	result, err := Predict(tagger, fakeRegistry{}, []preprocessing.Token{tok("bird", 0)}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"U-animal"}, result)
}

func TestPredict_GazetteerFeatureContributes(t *testing.T) {
	gaz := resources.NewGazetteer("en", "animals", true, []string{"bird"})
	tags := []string{tagging.OutsideTag, "U-animal"}
	transitions, err := kernel.NewMatrix([]float32{0, 0, 0, 0}, 2, 2)
	require.NoError(t, err)
	tagger := &Tagger{
		Language:       "en",
		Tags:           tags,
		GazetteerNames: []string{"animals"},
		FeatureWeights: map[string][]float32{
			"gaz=animals": {0, 10},
		},
		Transitions: transitions,
	}
	reg := fakeRegistry{gazetteers: map[string]*resources.Gazetteer{"animals": gaz}}
	result, err := Predict(tagger, reg, []preprocessing.Token{tok("bird", 0)}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"U-animal"}, result)
}

func BenchmarkSlotTagger_Predict(b *testing.B) {
	tags := []string{tagging.OutsideTag, "B-animal", "I-animal"}
	transitions, err := kernel.NewMatrix([]float32{
		0, 1, 0,
		0, 0, 1,
		0, 0, 0,
	}, 3, 3)
	require.NoError(b, err)

	tagger := &Tagger{
		Language: "en",
		Scheme:   tagging.SchemeBIO,
		Tags:     tags,
		FeatureWeights: map[string][]float32{
			"word=the":  {5, 0, 0},
			"word=blue": {0, 5, 0},
			"word=bird": {0, 0, 5},
		},
		Transitions: transitions,
	}
	tokens := []preprocessing.Token{tok("the", 0), tok("blue", 4), tok("bird", 9)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Predict(tagger, fakeRegistry{}, tokens, nil); err != nil {
			b.Fatal(err)
		}
	}
}
