package tagging

import (
	"github.com/pkg/errors"

	"github.com/voicebox/nlu-engine/preprocessing"
)

// ErrMissingEntityMapping is returned by TagsToSlots when a tag names a slot
// that has no entry in the supplied slot-name -> entity map.
var ErrMissingEntityMapping = errors.New("tag names a slot with no entity mapping")

// IsStartOfSlot reports whether position i in tags begins a new slot span
// under scheme.
func IsStartOfSlot(tags []string, i int, scheme Scheme) bool {
	if isOutside(tags[i]) {
		return false
	}
	switch scheme {
	case SchemeIO:
		return i == 0 || isOutside(tags[i-1])

	case SchemeBIO:
		return i == 0 || prefix(tags[i]) == 'B' || isOutside(tags[i-1])

	case SchemeBILOU:
		if i == 0 {
			return true
		}
		p := prefix(tags[i])
		if p == 'B' || p == 'U' {
			return true
		}
		prevPrefix := prefix(tags[i-1])
		return prevPrefix == 'U' || prevPrefix == 'L' || isOutside(tags[i-1])

	default:
		return false
	}
}

// IsEndOfSlot reports whether position i in tags ends the slot span it
// belongs to under scheme.
func IsEndOfSlot(tags []string, i int, scheme Scheme) bool {
	if isOutside(tags[i]) {
		return false
	}
	n := len(tags)
	switch scheme {
	case SchemeIO:
		return i+1 == n || isOutside(tags[i+1])

	case SchemeBIO:
		return i+1 == n || prefix(tags[i+1]) != 'I'

	case SchemeBILOU:
		p := prefix(tags[i])
		if p == 'L' || p == 'U' {
			return true
		}
		if i+1 == n || isOutside(tags[i+1]) {
			return true
		}
		nextPrefix := prefix(tags[i+1])
		return nextPrefix == 'B' || nextPrefix == 'U'

	default:
		return false
	}
}

// SlotRange is a decoded slot occupying a byte range of the original text.
type SlotRange struct {
	SlotName  string
	ByteRange preprocessing.ByteRange
}

// TagsToSlots sweeps tags once (in lock-step with tokens) and returns the
// non-overlapping, strictly ordered slot spans it encodes under scheme. text
// is unused for the computation itself (ranges are derived from the tokens)
// but is accepted for API symmetry with callers that also need the raw
// value. slotToEntity maps slot names to their entity kind; any slot name
// produced by tags that is absent from it is a MissingEntityMapping error.
func TagsToSlots(text string, tokens []preprocessing.Token, tags []string, scheme Scheme, slotToEntity map[string]string) ([]SlotRange, error) {
	_ = text
	if len(tokens) != len(tags) {
		return nil, errors.Errorf("tagging: %d tokens but %d tags", len(tokens), len(tags))
	}

	var slots []SlotRange
	start := -1
	for i := range tags {
		if IsStartOfSlot(tags, i, scheme) {
			start = i
		}
		if IsEndOfSlot(tags, i, scheme) {
			if start < 0 {
				// Malformed sequence (end without start); treat this token
				// alone as the span rather than panicking on a negative index.
				start = i
			}
			name := SlotName(tags[i])
			if _, ok := slotToEntity[name]; !ok {
				return nil, errors.Wrapf(ErrMissingEntityMapping, "slot %q", name)
			}
			slots = append(slots, SlotRange{
				SlotName: name,
				ByteRange: preprocessing.ByteRange{
					Start: tokens[start].ByteRange.Start,
					End:   tokens[i].ByteRange.End,
				},
			})
			start = -1
		}
	}
	return slots, nil
}
