package kernel

// ViterbiDecode finds the highest-scoring tag sequence for a linear-chain
// CRF given per-token emission scores (shape T x K: T tokens, K tags) and a
// K x K transition weight matrix (transitions.At(i, j) is the score of
// moving from tag i to tag j). It returns the sequence of tag indices and
// its total score. The decode itself is the textbook dynamic program run
// directly over the dense weights above.
func ViterbiDecode(emissions *Matrix, transitions *Matrix) ([]int, float32, error) {
	t := emissions.Rows()
	k := emissions.Cols()
	if t == 0 {
		return nil, 0, nil
	}
	if transitions.Rows() != k || transitions.Cols() != k {
		return nil, 0, errWrongDim("transition matrix", transitions.Rows(), k)
	}

	// score[i] = best score of any path ending in tag i at the current step.
	score := emissions.Row(0)
	backpointer := make([][]int, t)

	for step := 1; step < t; step++ {
		emission := emissions.Row(step)
		nextScore := make([]float32, k)
		back := make([]int, k)
		for to := 0; to < k; to++ {
			best := score[0] + transitions.At(0, to)
			bestFrom := 0
			for from := 1; from < k; from++ {
				cand := score[from] + transitions.At(from, to)
				if cand > best {
					best = cand
					bestFrom = from
				}
			}
			nextScore[to] = best + emission[to]
			back[to] = bestFrom
		}
		backpointer[step] = back
		score = nextScore
	}

	bestLast, bestScore := ArgMax(score)
	path := make([]int, t)
	path[t-1] = bestLast
	for step := t - 1; step > 0; step-- {
		path[step-1] = backpointer[step][path[step]]
	}
	return path, bestScore, nil
}

// SequenceScore computes the total CRF score of a specific tag-index path
// (sum of emission scores plus transition scores between consecutive
// tags), the same scoring function ViterbiDecode maximizes over. It lets a
// caller evaluate a tag sequence it constructed some other way, e.g. the
// slot aligner scoring a candidate built-in-entity assignment.
func SequenceScore(emissions, transitions *Matrix, path []int) (float32, error) {
	t := emissions.Rows()
	if len(path) != t {
		return 0, errWrongDim("path", len(path), t)
	}
	if t == 0 {
		return 0, nil
	}
	k := emissions.Cols()
	if transitions.Rows() != k || transitions.Cols() != k {
		return 0, errWrongDim("transition matrix", transitions.Rows(), k)
	}

	var score float32
	score += emissions.At(0, path[0])
	for i := 1; i < t; i++ {
		score += transitions.At(path[i-1], path[i])
		score += emissions.At(i, path[i])
	}
	return score, nil
}
