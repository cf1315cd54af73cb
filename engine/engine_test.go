package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voicebox/nlu-engine/config"
	"github.com/voicebox/nlu-engine/resources"
)

func writeFile(t testing.TB, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

const minimalProbabilisticIntent = `{
  "featurizer": {"vocabulary": {}, "idf": [], "best_features": []},
  "intent_classifier": {"intent_list": ["bookRestaurant"], "intercept": [], "weights": []},
  "slot_tagger": {"scheme": "BIO", "tags": ["O"], "transitions": [[0]]},
  "slot_to_entity": {},
  "compatible_builtin_slots": []
}`

func TestEngine_SingleIntentModelReturnsCertainty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trained_assistant.json", `{
    "model": {"probabilistic_parser": {"language_code": "en"}},
    "entities": {}
  }`)
	writeFile(t, dir, "probabilistic/en/bookRestaurant.json", minimalProbabilisticIntent)

	cfg, bundle, err := config.Load(dir)
	require.NoError(t, err)
	defer bundle.Close()

	e, err := New(cfg, bundle, resources.NewRegistry(), nil, []string{"bookRestaurant"}, Options{Threshold: 0.5})
	require.NoError(t, err)

	res, err := e.GetIntent(context.Background(), "anything at all", nil)
	require.NoError(t, err)
	require.Equal(t, "bookRestaurant", res.Name)
	require.Equal(t, float32(1.0), res.Probability)

	slots, err := e.GetSlots("anything at all", "bookRestaurant")
	require.NoError(t, err)
	require.Empty(t, slots)
}

func TestEngine_RuleBasedParserShortCircuits(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trained_assistant.json", `{
    "model": {"rule_based_parser": {"language": "en"}},
    "entities": {}
  }`)
	writeFile(t, dir, "rule_based/en/patterns.json", `{
    "intents": {"turnLightsOff": ["turn off the lights"]}
  }`)

	cfg, bundle, err := config.Load(dir)
	require.NoError(t, err)
	defer bundle.Close()

	e, err := New(cfg, bundle, resources.NewRegistry(), nil, nil, Options{Threshold: 0.5})
	require.NoError(t, err)

	res, err := e.GetIntent(context.Background(), "turn off the lights", nil)
	require.NoError(t, err)
	require.Equal(t, "turnLightsOff", res.Name)
	require.Equal(t, float32(1.0), res.Probability)
}

func TestEngine_NoParsersRejectsEverything(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trained_assistant.json", `{"model": {}, "entities": {}}`)

	cfg, bundle, err := config.Load(dir)
	require.NoError(t, err)
	defer bundle.Close()

	e, err := New(cfg, bundle, resources.NewRegistry(), nil, nil, Options{})
	require.NoError(t, err)

	res, err := e.GetIntent(context.Background(), "anything", nil)
	require.NoError(t, err)
	require.False(t, res.Present())
}

func TestEngine_InvalidThresholdRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trained_assistant.json", `{"model": {}, "entities": {}}`)
	cfg, bundle, err := config.Load(dir)
	require.NoError(t, err)
	defer bundle.Close()

	_, err = New(cfg, bundle, resources.NewRegistry(), nil, nil, Options{Threshold: 1.5})
	require.Error(t, err)
}

func TestEngine_UnknownIntentForSlotsErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trained_assistant.json", `{
    "model": {"probabilistic_parser": {"language_code": "en"}},
    "entities": {}
  }`)
	writeFile(t, dir, "probabilistic/en/bookRestaurant.json", minimalProbabilisticIntent)
	cfg, bundle, err := config.Load(dir)
	require.NoError(t, err)
	defer bundle.Close()

	e, err := New(cfg, bundle, resources.NewRegistry(), nil, []string{"bookRestaurant"}, Options{})
	require.NoError(t, err)

	_, err = e.GetSlots("anything", "neverRegistered")
	require.Error(t, err)
}

// restaurantNameTaggerIntent's sole feature weight fires on the "chez"
// token only if a "restaurant_name" gazetteer containing it has been
// registered: this is what distinguishes entity-gazetteer wiring being
// reachable from New from it being dead, tested-only config code.
const restaurantNameTaggerIntent = `{
  "featurizer": {"vocabulary": {}, "idf": [], "best_features": []},
  "intent_classifier": {"intent_list": ["findRestaurant"], "intercept": [], "weights": []},
  "slot_tagger": {
    "scheme": "BIO",
    "tags": ["O", "B-restaurant_name", "I-restaurant_name"],
    "feature_weights": {"gaz=restaurant_name": [0, 10, 0]},
    "transitions": [[0, 0, 0], [0, 0, 0], [0, 0, 0]],
    "gazetteer_names": ["restaurant_name"]
  },
  "slot_to_entity": {"restaurant_name": "restaurant_name"},
  "compatible_builtin_slots": []
}`

func TestEngine_New_RegistersEntityGazetteers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trained_assistant.json", `{
    "model": {"probabilistic_parser": {"language_code": "en"}},
    "entities": {"restaurant_name": {"automatically_extensible": true, "utterances": {"chez": "chez"}}}
  }`)
	writeFile(t, dir, "probabilistic/en/findRestaurant.json", restaurantNameTaggerIntent)

	cfg, bundle, err := config.Load(dir)
	require.NoError(t, err)
	defer bundle.Close()

	e, err := New(cfg, bundle, resources.NewRegistry(), nil, []string{"findRestaurant"}, Options{})
	require.NoError(t, err)

	slots, err := e.GetSlots("chez", "findRestaurant")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.Equal(t, "restaurant_name", slots[0].SlotName)
	require.Equal(t, "chez", slots[0].Value)
}

func TestEngine_New_WithoutEntitiesNoGazetteerMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trained_assistant.json", `{
    "model": {"probabilistic_parser": {"language_code": "en"}},
    "entities": {}
  }`)
	writeFile(t, dir, "probabilistic/en/findRestaurant.json", restaurantNameTaggerIntent)

	cfg, bundle, err := config.Load(dir)
	require.NoError(t, err)
	defer bundle.Close()

	e, err := New(cfg, bundle, resources.NewRegistry(), nil, []string{"findRestaurant"}, Options{})
	require.NoError(t, err)

	slots, err := e.GetSlots("chez", "findRestaurant")
	require.NoError(t, err)
	require.Empty(t, slots)
}

func BenchmarkEngine_GetIntent(b *testing.B) {
	dir := b.TempDir()
	writeFile(b, dir, "trained_assistant.json", `{
    "model": {"probabilistic_parser": {"language_code": "en"}},
    "entities": {}
  }`)
	writeFile(b, dir, "probabilistic/en/bookRestaurant.json", minimalProbabilisticIntent)

	cfg, bundle, err := config.Load(dir)
	require.NoError(b, err)
	defer bundle.Close()

	e, err := New(cfg, bundle, resources.NewRegistry(), nil, []string{"bookRestaurant"}, Options{Threshold: 0.5})
	require.NoError(b, err)

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.GetIntent(ctx, "book a table for two tonight", nil); err != nil {
			b.Fatal(err)
		}
	}
}
