package slot

import (
	"sort"

	"github.com/voicebox/nlu-engine/kernel"
	"github.com/voicebox/nlu-engine/ontology"
	"github.com/voicebox/nlu-engine/preprocessing"
	"github.com/voicebox/nlu-engine/tagging"
)

// DefaultAlignThreshold is the combinatorial-explosion cutoff: when the
// number of candidate assignments is at or below it, alignment enumerates
// exhaustively; above it, the conservative permutation strategy is used
// instead.
const DefaultAlignThreshold = 1000

// AlignInput bundles everything the aligner needs to merge the CRF's
// non-built-in slots with the ontology parser's built-in detections.
type AlignInput struct {
	Tagger     *Tagger
	Emissions  *kernel.Matrix
	Tokens     []preprocessing.Token
	CRFSlots   []tagging.SlotRange
	Detections []ontology.Detection
	// CompatibleSlotNames lists the built-in slot names the current intent
	// declares (the candidates each detection may be assigned to).
	CompatibleSlotNames []string
	// Threshold overrides DefaultAlignThreshold when positive.
	Threshold int
}

// Align enumerates assignments of each built-in detection to one of the
// intent's compatible built-in slot names (or the outside tag), scores
// each candidate assignment under the tagger's CRF, and returns the
// CRF slots merged with the highest-scoring assignment's built-ins.
func Align(in AlignInput) ([]tagging.SlotRange, error) {
	if len(in.Detections) == 0 || len(in.Tokens) == 0 {
		return in.CRFSlots, nil
	}

	tagIndex := make(map[string]int, len(in.Tagger.Tags))
	for i, tag := range in.Tagger.Tags {
		tagIndex[tag] = i
	}

	base := make([]int, len(in.Tokens))
	outsideIdx := tagIndex[tagging.OutsideTag]
	for i := range base {
		base[i] = outsideIdx
	}
	occupied := make([]bool, len(in.Tokens))
	for _, s := range in.CRFSlots {
		indexes := tokensInByteRange(in.Tokens, s.ByteRange)
		for j, idx := range indexes {
			tag := tagging.PositiveTagging(in.Tagger.Scheme, s.SlotName, len(indexes))[j]
			if pos, ok := tagIndex[tag]; ok {
				base[idx] = pos
			}
			occupied[idx] = true
		}
	}

	// Precompute, for each detection, which token indexes it overlaps and
	// whether that range is already occupied by a CRF slot.
	detTokens := make([][]int, len(in.Detections))
	detBlocked := make([]bool, len(in.Detections))
	for i, d := range in.Detections {
		idxs := tokensInCharRange(in.Tokens, d.CharRange)
		detTokens[i] = idxs
		for _, idx := range idxs {
			if occupied[idx] {
				detBlocked[i] = true
				break
			}
		}
	}

	names := append([]string{}, in.CompatibleSlotNames...)
	sort.Strings(names)

	threshold := in.Threshold
	if threshold <= 0 {
		threshold = DefaultAlignThreshold
	}

	assignments := enumerateAssignments(names, len(in.Detections), threshold)

	var best []string
	var bestScore float32
	haveBest := false

	for _, assignment := range assignments {
		path := append([]int(nil), base...)
		valid := true
		for i, name := range assignment {
			if name == tagging.OutsideTag || detBlocked[i] {
				continue
			}
			idxs := detTokens[i]
			if len(idxs) == 0 {
				continue
			}
			tags := tagging.PositiveTagging(in.Tagger.Scheme, name, len(idxs))
			for j, idx := range idxs {
				pos, ok := tagIndex[tags[j]]
				if !ok {
					valid = false
					break
				}
				path[idx] = pos
			}
			if !valid {
				break
			}
		}
		if !valid {
			continue
		}

		score, err := kernel.SequenceScore(in.Emissions, in.Tagger.Transitions, path)
		if err != nil {
			return nil, err
		}
		if !haveBest || score > bestScore {
			bestScore = score
			best = assignment
			haveBest = true
		}
	}

	if !haveBest {
		return in.CRFSlots, nil
	}

	out := append([]tagging.SlotRange(nil), in.CRFSlots...)
	for i, name := range best {
		if name == tagging.OutsideTag || detBlocked[i] {
			continue
		}
		idxs := detTokens[i]
		if len(idxs) == 0 {
			continue
		}
		out = append(out, tagging.SlotRange{
			SlotName: name,
			ByteRange: preprocessing.ByteRange{
				Start: in.Tokens[idxs[0]].ByteRange.Start,
				End:   in.Tokens[idxs[len(idxs)-1]].ByteRange.End,
			},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ByteRange.Start < out[j].ByteRange.Start })
	return out, nil
}

// enumerateAssignments returns every candidate assignment of numDetected
// detections to one of names or the outside tag, using the exhaustive
// Cartesian product when (len(names)+1)^numDetected does not exceed
// threshold, and a conservative permutation-based approximation otherwise.
func enumerateAssignments(names []string, numDetected, threshold int) [][]string {
	if numDetected == 0 {
		return nil
	}

	total := pow(len(names)+1, numDetected)
	if total > 0 && total <= threshold {
		return cartesianProduct(append(append([]string{}, names...), tagging.OutsideTag), numDetected)
	}
	return conservativePermutations(names, numDetected)
}

func pow(base, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
		if result > 1<<30 {
			return result // overflow guard: caller only compares against threshold
		}
	}
	return result
}

func cartesianProduct(choices []string, length int) [][]string {
	if length == 0 {
		return [][]string{{}}
	}
	rest := cartesianProduct(choices, length-1)
	out := make([][]string, 0, len(choices)*len(rest))
	for _, c := range choices {
		for _, r := range rest {
			combo := append([]string{c}, r...)
			out = append(out, combo)
		}
	}
	return out
}

// conservativePermutations generates length-numDetected permutations of
// indices drawn from a pool of size len(names)+numDetected; indices at or
// beyond len(names) map to the outside tag. Duplicate
// resulting assignments (arising because multiple out-of-range indices
// collapse to the same outside tag) are deduplicated.
func conservativePermutations(names []string, numDetected int) [][]string {
	poolSize := len(names) + numDetected
	pool := make([]int, poolSize)
	for i := range pool {
		pool[i] = i
	}

	seen := make(map[string]bool)
	var out [][]string
	used := make([]bool, poolSize)
	current := make([]int, numDetected)

	var rec func(depth int)
	rec = func(depth int) {
		if depth == numDetected {
			assignment := make([]string, numDetected)
			for i, poolIdx := range current {
				if poolIdx < len(names) {
					assignment[i] = names[poolIdx]
				} else {
					assignment[i] = tagging.OutsideTag
				}
			}
			key := ""
			for _, a := range assignment {
				key += a + "\x00"
			}
			if !seen[key] {
				seen[key] = true
				out = append(out, assignment)
			}
			return
		}
		for _, p := range pool {
			if used[p] {
				continue
			}
			used[p] = true
			current[depth] = p
			rec(depth + 1)
			used[p] = false
		}
	}
	rec(0)
	return out
}

func tokensInByteRange(tokens []preprocessing.Token, br preprocessing.ByteRange) []int {
	var out []int
	for i, tok := range tokens {
		if tok.ByteRange.Start >= br.Start && tok.ByteRange.End <= br.End {
			out = append(out, i)
		}
	}
	return out
}

func tokensInCharRange(tokens []preprocessing.Token, cr preprocessing.CharRange) []int {
	var out []int
	for i, tok := range tokens {
		if tok.CharRange.Start < cr.End && tok.CharRange.End > cr.Start {
			out = append(out, i)
		}
	}
	return out
}
