package config

import (
	"github.com/voicebox/nlu-engine/preprocessing"
	"github.com/voicebox/nlu-engine/resources"
)

// MergeEntityGazetteer builds the effective gazetteer for one entity,
// starting from whatever static gazetteer the resource registry already
// loaded for it (existing may be nil) and folding in the utterance keys
// declared by the assistant config. When the entity is NOT
// automatically_extensible, utterance tokens outside the existing static
// set are rejected (logged via resources.Gazetteer.CheckExtensibility,
// not added) rather than silently growing the gazetteer.
func MergeEntityGazetteer(language, entityName string, entity EntityConfig, existing *resources.Gazetteer) *resources.Gazetteer {
	tokens := make(map[string]struct{})
	extensible := entity.AutomaticallyExtensible
	if existing != nil {
		extensible = extensible || existing.AutomaticallyExtensible
	}

	for utterance := range entity.Utterances {
		normalized := preprocessing.Normalize(utterance)
		if existing != nil && existing.Contains(normalized) {
			tokens[normalized] = struct{}{}
			continue
		}
		if !entity.AutomaticallyExtensible {
			if existing != nil {
				existing.CheckExtensibility(normalized)
			}
			continue
		}
		tokens[normalized] = struct{}{}
	}

	out := make([]string, 0, len(tokens))
	for t := range tokens {
		out = append(out, t)
	}
	return resources.NewGazetteer(language, entityName, extensible, out)
}
