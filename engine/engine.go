// Package engine implements the NLU orchestrator: it runs the rule-based
// parser first, falls back to the probabilistic parser's per-intent
// fan-out, and merges the winning parser's intent with its slots.
package engine

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/voicebox/nlu-engine/config"
	"github.com/voicebox/nlu-engine/errs"
	"github.com/voicebox/nlu-engine/intent"
	"github.com/voicebox/nlu-engine/ontology"
	"github.com/voicebox/nlu-engine/preprocessing"
	"github.com/voicebox/nlu-engine/resources"
	"github.com/voicebox/nlu-engine/ruleparser"
	"github.com/voicebox/nlu-engine/slot"
	"github.com/voicebox/nlu-engine/tagging"
)

// rejectedProbability is the sentinel score assigned to a per-intent
// classifier that failed inside the parallel dispatch: it is always lower
// than any real probability, so a failing intent can never win, and the
// failure is logged rather than propagated.
const rejectedProbability = -1

// IntentResult is the outcome of GetIntent.
type IntentResult struct {
	Name        string
	Probability float32
}

// Present reports whether a named intent was returned.
func (r IntentResult) Present() bool {
	return r.Name != ""
}

// Slot is a decoded slot span expressed in both byte and character ranges,
// plus the literal text it covers.
type Slot struct {
	SlotName  string
	Entity    string
	Value     string
	ByteRange preprocessing.ByteRange
	CharRange preprocessing.CharRange
}

// ParseResult bundles GetIntent and GetSlots into a single convenience
// call.
type ParseResult struct {
	Intent IntentResult
	Slots  []Slot
}

type probabilisticIntent struct {
	classifier             *intent.Classifier
	tagger                 *slot.Tagger
	slotToEntity           map[string]string
	compatibleBuiltinSlots []string
}

// Engine is the process-wide NLU orchestrator. A single instance is safe
// to call concurrently from multiple goroutines: all mutable per-request
// state lives on the call stack, and every shared reference (registry,
// classifiers, taggers) is immutable after New returns.
type Engine struct {
	ruleLanguage          string
	probabilisticLanguage string

	ruleParser *ruleparser.Parser

	probabilistic map[string]*probabilisticIntent
	intentOrder   []string // insertion order, used as the stable tie-break

	ontologyParser ontology.Parser
	registry       *resources.Registry

	threshold      float32
	maxParallel    int
	alignThreshold int
}

// Options configures New. Threshold must be in [0, 1]. MaxParallel bounds
// the per-intent classification worker pool; zero means unbounded (one
// goroutine per intent). AlignThreshold overrides
// slot.DefaultAlignThreshold when positive.
type Options struct {
	Threshold      float32
	MaxParallel    int
	AlignThreshold int
}

// New builds an Engine from a decoded assistant bundle. It loads the
// rule-based parser's patterns (if the config declares one) and every
// registered intent's probabilistic model (if the config declares one),
// per config.AssistantConfig.Variant.
func New(cfg *config.AssistantConfig, bundle *config.Bundle, registry *resources.Registry, ontologyParser ontology.Parser, intentNames []string, opts Options) (*Engine, error) {
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, errs.New(errs.InvalidInput, "threshold out of range [0,1]")
	}

	e := &Engine{
		registry:       registry,
		ontologyParser: ontologyParser,
		threshold:      opts.Threshold,
		maxParallel:    opts.MaxParallel,
		alignThreshold: opts.AlignThreshold,
		probabilistic:  make(map[string]*probabilisticIntent),
	}

	if cfg.HasRuleBasedParser() {
		e.ruleLanguage = cfg.Model.RuleBasedParser.Language
		rp, err := loadRuleParser(bundle, e.ruleLanguage)
		if err != nil {
			return nil, err
		}
		e.ruleParser = rp
	}

	if cfg.HasProbabilisticParser() {
		e.probabilisticLanguage = cfg.Model.ProbabilisticParser.LanguageCode
		for _, name := range intentNames {
			pi, err := loadProbabilisticIntent(bundle, e.probabilisticLanguage, name)
			if err != nil {
				return nil, err
			}
			e.probabilistic[name] = pi
			e.intentOrder = append(e.intentOrder, name)
		}
	}

	registerEntityGazetteers(cfg, registry, entityLanguage(e))

	return e, nil
}

// entityLanguage picks the language the bundle's entity utterances belong
// to: the probabilistic parser's language if one is configured, else the
// rule-based parser's.
func entityLanguage(e *Engine) string {
	if e.probabilisticLanguage != "" {
		return e.probabilisticLanguage
	}
	return e.ruleLanguage
}

// registerEntityGazetteers folds each entity's declared utterances (and
// automatically_extensible flag) from the assistant config into the
// registry's gazetteer for that entity name, so the CRF's gaz= features
// and Gazetteer.CheckExtensibility see the bundle's entity data rather
// than only whatever static gazetteer file the language-resources
// directory happened to carry.
func registerEntityGazetteers(cfg *config.AssistantConfig, registry *resources.Registry, language string) {
	if language == "" || len(cfg.Entities) == 0 {
		return
	}
	names := make([]string, 0, len(cfg.Entities))
	for name := range cfg.Entities {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		existing := registry.Gazetteer(language, name)
		merged := config.MergeEntityGazetteer(language, name, cfg.Entities[name], existing)
		registry.RegisterGazetteer(language, merged)
	}
}

// GetIntent runs the rule-based parser first; if it declines, it fans out
// over every registered probabilistic intent and returns the
// highest-probability result meeting the configured threshold, restricted
// to allowedIntents when non-empty.
func (e *Engine) GetIntent(ctx context.Context, text string, allowedIntents []string) (IntentResult, error) {
	if e.ruleParser != nil {
		if result, ok := ruleparser.Parse(e.ruleParser, text, e.ruleLanguage, allowedIntents); ok {
			return IntentResult{Name: result.IntentName, Probability: 1.0}, nil
		}
	}
	if len(e.probabilistic) == 0 {
		return IntentResult{}, nil
	}
	return e.classifyProbabilistic(ctx, text, allowedIntents)
}

type classification struct {
	name        string
	probability float32
}

// classifyProbabilistic runs every allowed intent's classifier concurrently
// (bounded by maxParallel), then sorts by probability descending with a
// stable tie-break on registration order.
func (e *Engine) classifyProbabilistic(ctx context.Context, text string, allowedIntents []string) (IntentResult, error) {
	requestID := uuid.NewString()
	allowed := toSet(allowedIntents)

	names := make([]string, 0, len(e.intentOrder))
	for _, name := range e.intentOrder {
		if allowed != nil {
			if _, ok := allowed[name]; !ok {
				continue
			}
		}
		names = append(names, name)
	}

	results := make([]classification, len(names))

	g, gctx := errgroup.WithContext(ctx)
	if e.maxParallel > 0 {
		g.SetLimit(e.maxParallel)
	}

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return errs.New(errs.Cancelled, "request cancelled before classifying intent "+name)
			default:
			}

			pi := e.probabilistic[name]
			res, err := intent.Classify(pi.classifier, e.registry, text)
			if err != nil {
				klog.ErrorS(err, "per-intent classification failed, excluding intent", "request", requestID, "intent", name)
				results[i] = classification{name: name, probability: rejectedProbability}
				return nil
			}
			prob := res.Probability
			if res.Rejected() {
				prob = rejectedProbability
			}
			results[i] = classification{name: name, probability: prob}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return IntentResult{}, err
	}

	// Stable sort preserves names' (= intentOrder's) relative order among
	// equal probabilities, satisfying the "stable insertion order" tie-break.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].probability > results[j].probability
	})

	if len(results) == 0 || results[0].probability < e.threshold {
		return IntentResult{}, nil
	}
	return IntentResult{Name: results[0].name, Probability: results[0].probability}, nil
}

// GetSlots returns the slots the parser that won intentName would produce
// for text: rule-based slots are captured during matching; probabilistic
// slots come from the CRF tagger plus the built-in-entity aligner.
func (e *Engine) GetSlots(text, intentName string) ([]Slot, error) {
	if e.ruleParser != nil {
		if result, ok := ruleparser.Parse(e.ruleParser, text, e.ruleLanguage, []string{intentName}); ok {
			return e.toSlots(text, preprocessing.Tokenize(text, e.ruleLanguage), result.Slots, nil), nil
		}
	}

	pi, ok := e.probabilistic[intentName]
	if !ok {
		return nil, errs.New(errs.UnknownIntent, "unknown intent "+intentName)
	}

	tokens := preprocessing.Tokenize(text, e.probabilisticLanguage)

	var detections []ontology.Detection
	var err error
	if e.ontologyParser != nil {
		detections, err = e.ontologyParser.Extract(text, e.probabilisticLanguage, nil)
		if err != nil {
			return nil, errs.Wrap(errs.Internal, "ontology parser failed", err)
		}
	}

	crfTags, err := slot.Predict(pi.tagger, e.registry, tokens, detections)
	if err != nil {
		return nil, err
	}
	crfSlots, err := tagging.TagsToSlots(text, tokens, crfTags, pi.tagger.Scheme, pi.slotToEntity)
	if err != nil {
		return nil, err
	}

	emissions, err := slot.ComputeEmissions(pi.tagger, e.registry, tokens, detections)
	if err != nil {
		return nil, err
	}

	merged, err := slot.Align(slot.AlignInput{
		Tagger:              pi.tagger,
		Emissions:           emissions,
		Tokens:              tokens,
		CRFSlots:            crfSlots,
		Detections:          detections,
		CompatibleSlotNames: pi.compatibleBuiltinSlots,
		Threshold:           e.alignThreshold,
	})
	if err != nil {
		return nil, err
	}

	return e.toSlots(text, tokens, merged, pi.slotToEntity), nil
}

// Parse is the convenience call combining GetIntent and GetSlots.
func (e *Engine) Parse(ctx context.Context, text string) (ParseResult, error) {
	res, err := e.GetIntent(ctx, text, nil)
	if err != nil {
		return ParseResult{}, err
	}
	if !res.Present() {
		return ParseResult{Intent: res}, nil
	}
	slots, err := e.GetSlots(text, res.Name)
	if err != nil {
		return ParseResult{}, err
	}
	return ParseResult{Intent: res, Slots: slots}, nil
}

func (e *Engine) toSlots(text string, tokens []preprocessing.Token, ranges []tagging.SlotRange, slotToEntity map[string]string) []Slot {
	out := make([]Slot, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, Slot{
			SlotName:  r.SlotName,
			Entity:    slotToEntity[r.SlotName],
			Value:     text[r.ByteRange.Start:r.ByteRange.End],
			ByteRange: r.ByteRange,
			CharRange: byteRangeToCharRange(tokens, r.ByteRange),
		})
	}
	return out
}

func byteRangeToCharRange(tokens []preprocessing.Token, br preprocessing.ByteRange) preprocessing.CharRange {
	cr := preprocessing.CharRange{}
	for _, tok := range tokens {
		if tok.ByteRange.Start == br.Start {
			cr.Start = tok.CharRange.Start
		}
		if tok.ByteRange.End == br.End {
			cr.End = tok.CharRange.End
		}
	}
	return cr
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
