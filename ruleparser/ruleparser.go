// Package ruleparser implements the rule-based (pattern-grammar) parser:
// a deterministic, whole-utterance matcher tried before the probabilistic
// parser. Patterns are per intent and language, and consist of literal
// words interleaved with named slot placeholders.
package ruleparser

import (
	"strings"

	"github.com/voicebox/nlu-engine/preprocessing"
	"github.com/voicebox/nlu-engine/tagging"
)

// ElementKind distinguishes a pattern element's two forms.
type ElementKind int

const (
	// Literal matches one exact normalized word.
	Literal ElementKind = iota
	// Slot matches any single run of one-or-more tokens, captured under
	// SlotName.
	Slot
)

// Element is one position within a Pattern.
type Element struct {
	Kind     ElementKind
	Literal  string // normalized literal text, only set when Kind == Literal
	SlotName string // only set when Kind == Slot
}

// Pattern is a sequence of literal words and named slot placeholders that
// must account for the entire utterance for a match to succeed.
type Pattern struct {
	Elements []Element
}

// IntentPatterns holds every compiled pattern for one (intent, language)
// pair. Patterns are tried in order; the first full match wins.
type IntentPatterns struct {
	IntentName string
	Language   string
	Patterns   []Pattern
}

// Parser is a registry of compiled patterns, keyed by language; each
// language holds its per-intent pattern sets in registration order.
type Parser struct {
	byLanguage map[string][]*IntentPatterns
}

// New builds a Parser from a flat list of per-intent pattern sets.
func New(entries []*IntentPatterns) *Parser {
	p := &Parser{byLanguage: make(map[string][]*IntentPatterns)}
	for _, e := range entries {
		p.byLanguage[e.Language] = append(p.byLanguage[e.Language], e)
	}
	return p
}

// Result is a successful rule-based match.
type Result struct {
	IntentName string
	Slots      []tagging.SlotRange
}

// Parse matches text against every compiled pattern for language, scoped
// to allowedIntents if non-empty, and returns the first full match. It
// reports (Result{}, false) on no match.
func Parse(p *Parser, text, language string, allowedIntents []string) (Result, bool) {
	tokens := preprocessing.Tokenize(text, language)
	allowed := toSet(allowedIntents)

	for _, entry := range p.byLanguage[language] {
		if allowed != nil {
			if _, ok := allowed[entry.IntentName]; !ok {
				continue
			}
		}
		for _, pattern := range entry.Patterns {
			if slots, ok := matchPattern(pattern, tokens); ok {
				return Result{IntentName: entry.IntentName, Slots: slots}, true
			}
		}
	}
	return Result{}, false
}

// matchPattern tries to account for the entirety of tokens using pattern's
// elements, backtracking over how many tokens each Slot element consumes.
func matchPattern(pattern Pattern, tokens []preprocessing.Token) ([]tagging.SlotRange, bool) {
	var slots []tagging.SlotRange
	ok := matchFrom(pattern.Elements, tokens, 0, 0, &slots)
	if !ok {
		return nil, false
	}
	return slots, true
}

func matchFrom(elements []Element, tokens []preprocessing.Token, elemIdx, tokIdx int, slots *[]tagging.SlotRange) bool {
	if elemIdx == len(elements) {
		return tokIdx == len(tokens)
	}
	elem := elements[elemIdx]

	switch elem.Kind {
	case Literal:
		if tokIdx >= len(tokens) || tokens[tokIdx].NormalizedValue != elem.Literal {
			return false
		}
		return matchFrom(elements, tokens, elemIdx+1, tokIdx+1, slots)

	case Slot:
		// A slot must consume at least one token; try the shortest span
		// first so literal elements following it get first claim on tokens.
		for end := tokIdx + 1; end <= len(tokens); end++ {
			snapshot := append([]tagging.SlotRange(nil), (*slots)...)
			*slots = append(*slots, tagging.SlotRange{
				SlotName: elem.SlotName,
				ByteRange: preprocessing.ByteRange{
					Start: tokens[tokIdx].ByteRange.Start,
					End:   tokens[end-1].ByteRange.End,
				},
			})
			if matchFrom(elements, tokens, elemIdx+1, end, slots) {
				return true
			}
			*slots = snapshot
		}
		return false

	default:
		return false
	}
}

func toSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// ParsePattern compiles a space-separated pattern string into a Pattern;
// a token wrapped in braces (e.g. "{city}") is a Slot placeholder, any
// other token is a Literal (normalized the same way utterance tokens are).
func ParsePattern(text string) Pattern {
	var elements []Element
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, "{") && strings.HasSuffix(word, "}") && len(word) > 2 {
			elements = append(elements, Element{Kind: Slot, SlotName: word[1 : len(word)-1]})
			continue
		}
		elements = append(elements, Element{Kind: Literal, Literal: preprocessing.Normalize(word)})
	}
	return Pattern{Elements: elements}
}
