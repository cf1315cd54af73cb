package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatrix_RowAndAt(t *testing.T) {
	m, err := NewMatrix([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 3}, m.Row(0))
	require.Equal(t, []float32{4, 5, 6}, m.Row(1))
	require.Equal(t, float32(5), m.At(1, 1))
}

func TestSoftmax_SumsToOne(t *testing.T) {
	probs := Softmax([]float32{1, 2, 3})
	var sum float32
	for _, p := range probs {
		require.GreaterOrEqual(t, p, float32(0))
		require.LessOrEqual(t, p, float32(1))
		sum += p
	}
	require.InDelta(t, 1.0, sum, 1e-6)
}

func TestArgMax(t *testing.T) {
	idx, val := ArgMax([]float32{0.1, 0.9, 0.3})
	require.Equal(t, 1, idx)
	require.Equal(t, float32(0.9), val)
}

func TestLogitsFromFeatures(t *testing.T) {
	// W is 2 features x 2 classes.
	w, err := NewMatrix([]float32{1, 0, 0, 1}, 2, 2)
	require.NoError(t, err)
	logits, err := LogitsFromFeatures(w, []float32{0, 0}, []float32{1, 2})
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2}, logits)
}

func TestViterbiDecode_PrefersConsistentPath(t *testing.T) {
	// 3 tokens, 2 tags. Emissions strongly favor tag 0 throughout, and the
	// transition matrix discourages switching tags.
	emissions, err := NewMatrix([]float32{
		5, 0,
		5, 0,
		5, 0,
	}, 3, 2)
	require.NoError(t, err)
	transitions, err := NewMatrix([]float32{
		1, -5,
		-5, 1,
	}, 2, 2)
	require.NoError(t, err)

	path, _, err := ViterbiDecode(emissions, transitions)
	require.NoError(t, err)
	require.Equal(t, []int{0, 0, 0}, path)
}

func TestSequenceScore_MatchesViterbiOnItsOwnPath(t *testing.T) {
	emissions, err := NewMatrix([]float32{
		5, 0,
		1, 4,
	}, 2, 2)
	require.NoError(t, err)
	transitions, err := NewMatrix([]float32{
		1, 0,
		0, 1,
	}, 2, 2)
	require.NoError(t, err)

	path, bestScore, err := ViterbiDecode(emissions, transitions)
	require.NoError(t, err)

	score, err := SequenceScore(emissions, transitions, path)
	require.NoError(t, err)
	require.InDelta(t, bestScore, score, 1e-6)

	worse, err := SequenceScore(emissions, transitions, []int{1, 0})
	require.NoError(t, err)
	require.Less(t, worse, score)
}
