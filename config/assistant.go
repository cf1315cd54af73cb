// Package config decodes an on-disk assistant bundle: a directory or zip
// archive rooted at a mandatory trained_assistant.json, describing which
// of the rule-based/probabilistic parsers are present and the entities
// each intent's slots resolve to.
package config

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/voicebox/nlu-engine/errs"
)

// RuleBasedParserConfig is the "model.rule_based_parser" block.
type RuleBasedParserConfig struct {
	Language string `json:"language"`
}

// ProbabilisticParserConfig is the "model.probabilistic_parser" block.
type ProbabilisticParserConfig struct {
	LanguageCode string `json:"language_code"`
}

// ModelConfig is the "model" block; either sub-block may be absent, which
// is how the engine decides its variant (rule_based / probabilistic /
// combined).
type ModelConfig struct {
	RuleBasedParser     *RuleBasedParserConfig     `json:"rule_based_parser,omitempty"`
	ProbabilisticParser *ProbabilisticParserConfig `json:"probabilistic_parser,omitempty"`
}

// EntityConfig is one entry of the top-level "entities" map: whether the
// entity accepts values beyond its declared utterances, and the
// utterance -> canonical-value table used to seed gazetteers/entity
// features at load time.
type EntityConfig struct {
	AutomaticallyExtensible bool              `json:"automatically_extensible"`
	Utterances              map[string]string `json:"utterances"`
}

// AssistantConfig is the decoded contents of trained_assistant.json.
type AssistantConfig struct {
	Model    ModelConfig             `json:"model"`
	Entities map[string]EntityConfig `json:"entities"`
	// Intents names every registered intent, in the order a probabilistic
	// parser should consider them (the stable tie-break on ties). Absent/
	// empty for rule-based-only assistants.
	Intents []string `json:"intents"`
}

// HasRuleBasedParser reports whether the assistant declares a rule-based
// parser block.
func (c *AssistantConfig) HasRuleBasedParser() bool {
	return c.Model.RuleBasedParser != nil
}

// HasProbabilisticParser reports whether the assistant declares a
// probabilistic parser block.
func (c *AssistantConfig) HasProbabilisticParser() bool {
	return c.Model.ProbabilisticParser != nil
}

// Variant names which combination of parsers an AssistantConfig selects:
// rule-based, probabilistic, or both combined.
type Variant int

const (
	VariantNone Variant = iota
	VariantRuleBased
	VariantProbabilistic
	VariantCombined
)

// Variant classifies c by which parser blocks are present.
func (c *AssistantConfig) Variant() Variant {
	switch {
	case c.HasRuleBasedParser() && c.HasProbabilisticParser():
		return VariantCombined
	case c.HasRuleBasedParser():
		return VariantRuleBased
	case c.HasProbabilisticParser():
		return VariantProbabilistic
	default:
		return VariantNone
	}
}

const assistantFileName = "trained_assistant.json"

// Load reads an assistant bundle from path, which may be a directory or a
// zip archive. Bundle is also returned so callers can read any other
// files the bundle carries (model weight files, language resources)
// relative to the same root.
func Load(path string) (*AssistantConfig, *Bundle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, errs.Wrap(errs.ConfigurationLoad, "statting assistant bundle path", err)
	}

	var bundle *Bundle
	if info.IsDir() {
		bundle = &Bundle{dir: path}
	} else {
		zr, err := zip.OpenReader(path)
		if err != nil {
			return nil, nil, errs.Wrap(errs.ConfigurationLoad, "opening assistant bundle archive", err)
		}
		bundle = &Bundle{archive: zr}
	}

	data, err := bundle.ReadFile(assistantFileName)
	if err != nil {
		return nil, nil, errs.Wrap(errs.ConfigurationLoad, "reading "+assistantFileName, err)
	}

	var cfg AssistantConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, errs.Wrap(errs.ConfigurationLoad, "parsing "+assistantFileName, err)
	}

	return &cfg, bundle, nil
}

// Bundle reads files out of an assistant bundle, whether it is a plain
// directory or a zip archive.
type Bundle struct {
	dir     string
	archive *zip.ReadCloser
}

// ReadFile returns the contents of name, relative to the bundle root.
func (b *Bundle) ReadFile(name string) ([]byte, error) {
	if b.archive != nil {
		for _, f := range b.archive.File {
			if f.Name == name {
				rc, err := f.Open()
				if err != nil {
					return nil, err
				}
				defer rc.Close()
				return io.ReadAll(rc)
			}
		}
		return nil, os.ErrNotExist
	}
	return os.ReadFile(filepath.Join(b.dir, name))
}

// Close releases the bundle's archive handle, if any. It is a no-op for a
// directory-backed bundle.
func (b *Bundle) Close() error {
	if b.archive != nil {
		return b.archive.Close()
	}
	return nil
}
