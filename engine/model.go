package engine

import (
	"encoding/json"
	"fmt"
	"path"

	"github.com/voicebox/nlu-engine/config"
	"github.com/voicebox/nlu-engine/errs"
	"github.com/voicebox/nlu-engine/featurizer"
	"github.com/voicebox/nlu-engine/intent"
	"github.com/voicebox/nlu-engine/kernel"
	"github.com/voicebox/nlu-engine/ruleparser"
	"github.com/voicebox/nlu-engine/slot"
	"github.com/voicebox/nlu-engine/tagging"
)

// featurizerFile is the on-disk JSON shape of one intent's fitted
// featurizer.
type featurizerFile struct {
	Vocabulary                     map[string]int      `json:"vocabulary"`
	IDF                            []float32           `json:"idf"`
	BestFeatures                   []int               `json:"best_features"`
	Sublinear                      bool                `json:"sublinear"`
	EntityUtterancesToFeatureNames map[string][]string `json:"entity_utterances_to_feature_names"`
	ClusterName                    string              `json:"cluster_name"`
	MaxNgramLength                 int                 `json:"max_ngram_length"`
}

// intentClassifierFile is the on-disk JSON shape of one intent's logistic
// regression head.
type intentClassifierFile struct {
	IntentList []string    `json:"intent_list"`
	Intercept  []float32   `json:"intercept"`
	Weights    [][]float32 `json:"weights"`
}

// slotTaggerFile is the on-disk JSON shape of one intent's CRF tagger.
type slotTaggerFile struct {
	Scheme           string               `json:"scheme"`
	Tags             []string             `json:"tags"`
	BuiltinSlotNames []string             `json:"builtin_slot_names"`
	FeatureWeights   map[string][]float32 `json:"feature_weights"`
	Transitions      [][]float32          `json:"transitions"`
	GazetteerNames   []string             `json:"gazetteer_names"`
	ClusterNames     []string             `json:"cluster_names"`
}

// probabilisticIntentFile is the full per-intent probabilistic model
// bundle: featurizer + classifier + tagger + the slot/entity mapping the
// aligner needs.
type probabilisticIntentFile struct {
	Featurizer             featurizerFile       `json:"featurizer"`
	IntentClassifier       intentClassifierFile `json:"intent_classifier"`
	SlotTagger             slotTaggerFile       `json:"slot_tagger"`
	SlotToEntity           map[string]string    `json:"slot_to_entity"`
	CompatibleBuiltinSlots []string             `json:"compatible_builtin_slots"`
}

func parseScheme(s string) (tagging.Scheme, error) {
	switch s {
	case "IO":
		return tagging.SchemeIO, nil
	case "BIO":
		return tagging.SchemeBIO, nil
	case "BILOU":
		return tagging.SchemeBILOU, nil
	default:
		return 0, errs.New(errs.ConfigurationLoad, fmt.Sprintf("unknown tagging scheme %q", s))
	}
}

// loadProbabilisticIntent decodes and wires one intent's probabilistic
// model bundle from path "probabilistic/<language>/<intentName>.json"
// inside bundle.
func loadProbabilisticIntent(bundle *config.Bundle, language, intentName string) (*probabilisticIntent, error) {
	filePath := path.Join("probabilistic", language, intentName+".json")
	data, err := bundle.ReadFile(filePath)
	if err != nil {
		return nil, errs.Wrap(errs.ConfigurationLoad, "reading probabilistic model for intent "+intentName, err)
	}

	var file probabilisticIntentFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errs.Wrap(errs.ConfigurationLoad, "parsing probabilistic model for intent "+intentName, err)
	}

	f := &featurizer.Featurizer{
		Language:                       language,
		Vocabulary:                     file.Featurizer.Vocabulary,
		IDF:                            file.Featurizer.IDF,
		BestFeatures:                   file.Featurizer.BestFeatures,
		Sublinear:                      file.Featurizer.Sublinear,
		EntityUtterancesToFeatureNames: file.Featurizer.EntityUtterancesToFeatureNames,
		ClusterName:                    file.Featurizer.ClusterName,
		MaxNgramLength:                 file.Featurizer.MaxNgramLength,
	}

	var weights *kernel.Matrix
	if len(file.IntentClassifier.Weights) > 0 {
		weights, err = kernel.NewMatrixFromRows(file.IntentClassifier.Weights)
		if err != nil {
			return nil, errs.Wrap(errs.ModelShape, "intent classifier weights for "+intentName, err)
		}
	}
	classifier := &intent.Classifier{
		Featurizer: f,
		IntentList: file.IntentClassifier.IntentList,
		Weights:    weights,
		Intercept:  file.IntentClassifier.Intercept,
	}

	scheme, err := parseScheme(file.SlotTagger.Scheme)
	if err != nil {
		return nil, err
	}
	var transitions *kernel.Matrix
	if len(file.SlotTagger.Transitions) > 0 {
		transitions, err = kernel.NewMatrixFromRows(file.SlotTagger.Transitions)
		if err != nil {
			return nil, errs.Wrap(errs.ModelShape, "slot tagger transitions for "+intentName, err)
		}
	}
	builtinSlots := make(map[string]struct{}, len(file.SlotTagger.BuiltinSlotNames))
	for _, name := range file.SlotTagger.BuiltinSlotNames {
		builtinSlots[name] = struct{}{}
	}
	tagger := &slot.Tagger{
		Language:         language,
		Scheme:           scheme,
		Tags:             file.SlotTagger.Tags,
		BuiltinSlotNames: builtinSlots,
		FeatureWeights:   file.SlotTagger.FeatureWeights,
		Transitions:      transitions,
		GazetteerNames:   file.SlotTagger.GazetteerNames,
		ClusterNames:     file.SlotTagger.ClusterNames,
	}

	return &probabilisticIntent{
		classifier:             classifier,
		tagger:                 tagger,
		slotToEntity:           file.SlotToEntity,
		compatibleBuiltinSlots: file.CompatibleBuiltinSlots,
	}, nil
}

// rulePatternsFile is the on-disk JSON shape of the rule-based parser's
// compiled patterns: intent name -> list of pattern strings.
type rulePatternsFile struct {
	Intents map[string][]string `json:"intents"`
}

// loadRuleParser decodes "rule_based/<language>/patterns.json" into a
// ready-to-use ruleparser.Parser.
func loadRuleParser(bundle *config.Bundle, language string) (*ruleparser.Parser, error) {
	filePath := path.Join("rule_based", language, "patterns.json")
	data, err := bundle.ReadFile(filePath)
	if err != nil {
		return nil, errs.Wrap(errs.ConfigurationLoad, "reading rule-based patterns", err)
	}

	var file rulePatternsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errs.Wrap(errs.ConfigurationLoad, "parsing rule-based patterns", err)
	}

	var entries []*ruleparser.IntentPatterns
	for intentName, patterns := range file.Intents {
		entry := &ruleparser.IntentPatterns{IntentName: intentName, Language: language}
		for _, p := range patterns {
			entry.Patterns = append(entry.Patterns, ruleparser.ParsePattern(p))
		}
		entries = append(entries, entry)
	}
	return ruleparser.New(entries), nil
}
