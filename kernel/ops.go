package kernel

import (
	"fmt"
	"math"
)

// LogitsFromFeatures computes logits = intercept + Wᵀx for weights W of
// shape (F, K) (F features, K classes), intercept of length K, and a
// feature vector x of length F. It is the dense linear layer underneath the
// intent classifier.
func LogitsFromFeatures(weights *Matrix, intercept []float32, x []float32) ([]float32, error) {
	if weights.Rows() != len(x) {
		return nil, errWrongDim("feature vector", len(x), weights.Rows())
	}
	if weights.Cols() != len(intercept) {
		return nil, errWrongDim("intercept", len(intercept), weights.Cols())
	}

	logits := make([]float32, weights.Cols())
	copy(logits, intercept)
	for f := 0; f < weights.Rows(); f++ {
		xf := x[f]
		if xf == 0 {
			continue
		}
		row := weights.Row(f)
		for k := range logits {
			logits[k] += xf * row[k]
		}
	}
	return logits, nil
}

// Softmax returns the softmax distribution over logits, numerically
// stabilized by subtracting the max logit first.
func Softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}
	exps := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxLogit))
		exps[i] = e
		sum += e
	}
	out := make([]float32, len(logits))
	for i, e := range exps {
		out[i] = float32(e / sum)
	}
	return out
}

// ArgMax returns the index of the largest value in xs, and the value
// itself. It returns (-1, 0) for an empty input.
func ArgMax(xs []float32) (int, float32) {
	if len(xs) == 0 {
		return -1, 0
	}
	best := 0
	for i, v := range xs[1:] {
		if v > xs[best] {
			best = i + 1
		}
	}
	return best, xs[best]
}

func errWrongDim(what string, got, want int) error {
	return &dimError{what: what, got: got, want: want}
}

type dimError struct {
	what      string
	got, want int
}

func (e *dimError) Error() string {
	return fmt.Sprintf("kernel: %s has dimension %d, want %d", e.what, e.got, e.want)
}
