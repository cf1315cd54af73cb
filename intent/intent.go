// Package intent implements the probabilistic intent classifier: a
// multiclass logistic regression head evaluated over the featurizer's
// output.
package intent

import (
	"github.com/voicebox/nlu-engine/featurizer"
	"github.com/voicebox/nlu-engine/kernel"
)

// NoIntent is the sentinel intent name reserved for "reject": a classifier
// whose argmax lands here returns a rejection rather than a named intent.
const NoIntent = ""

// Result is the outcome of classifying one utterance.
type Result struct {
	// Name is the winning intent, or "" (NoIntent) on rejection.
	Name string
	// Probability is the softmax weight the winning class received. It is
	// always in [0, 1]; rejections carry whatever probability the sentinel
	// class received.
	Probability float32
}

// Rejected reports whether r represents "no intent matched".
func (r Result) Rejected() bool {
	return r.Name == NoIntent
}

// Classifier is a fitted multiclass logistic regression model: logits =
// intercept + Wᵀx, softmax, argmax.
type Classifier struct {
	// Featurizer produces the feature vector this classifier's weights were
	// trained against. A nil Featurizer makes the classifier inert (see
	// Classify's edge-case handling).
	Featurizer *featurizer.Featurizer

	// IntentList names each output class in weight-column order.
	// IntentList[k] == NoIntent marks the sentinel "no intent" column.
	IntentList []string

	// Weights is F x K (F features, K = len(IntentList)).
	Weights *kernel.Matrix
	// Intercept has length K.
	Intercept []float32
}

// Classify runs the full pipeline and returns a rejection per the
// documented edge cases: an empty IntentList rejects immediately.
// A single-entry IntentList always returns that intent with probability
// 1.0 (or rejects, if that single entry is the NoIntent sentinel), without
// ever touching the featurizer or weights. Only once both of those checks
// are past does a missing featurizer or missing weights reject.
func Classify(c *Classifier, reg featurizer.Registry, utterance string) (Result, error) {
	if len(c.IntentList) == 0 {
		return Result{}, nil
	}

	if len(c.IntentList) == 1 {
		name := c.IntentList[0]
		if name != NoIntent {
			return Result{Name: name, Probability: 1.0}, nil
		}
		return Result{}, nil
	}

	if c.Featurizer == nil || c.Weights == nil {
		return Result{}, nil
	}

	x := featurizer.Featurize(c.Featurizer, reg, utterance)
	logits, err := kernel.LogitsFromFeatures(c.Weights, c.Intercept, x)
	if err != nil {
		return Result{}, err
	}
	probs := kernel.Softmax(logits)
	best, prob := kernel.ArgMax(probs)

	name := c.IntentList[best]
	if name == NoIntent {
		return Result{Probability: prob}, nil
	}
	return Result{Name: name, Probability: prob}, nil
}
