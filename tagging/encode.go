package tagging

// PositiveTagging is the inverse of TagsToSlots for a single slot occupying
// n consecutive tokens: it returns the tag sequence that, when decoded under
// scheme, yields exactly that one slot. slotName == "O" (or n == 0) yields
// n (possibly zero) copies of the outside tag.
func PositiveTagging(scheme Scheme, slotName string, n int) []string {
	if n == 0 {
		return nil
	}
	if slotName == OutsideTag {
		tags := make([]string, n)
		for i := range tags {
			tags[i] = OutsideTag
		}
		return tags
	}

	tags := make([]string, n)
	switch scheme {
	case SchemeIO:
		for i := range tags {
			tags[i] = "I-" + slotName
		}

	case SchemeBIO:
		tags[0] = "B-" + slotName
		for i := 1; i < n; i++ {
			tags[i] = "I-" + slotName
		}

	case SchemeBILOU:
		if n == 1 {
			tags[0] = "U-" + slotName
			return tags
		}
		tags[0] = "B-" + slotName
		for i := 1; i < n-1; i++ {
			tags[i] = "I-" + slotName
		}
		tags[n-1] = "L-" + slotName
	}
	return tags
}

// SchemePrefix returns the tag prefix ('I', 'B', 'L', or 'U') that should be
// used for the token at position index within a contiguous group of token
// indexes (indexes[0] is the first token of the slot, indexes[len-1] the
// last), under scheme. It is used when projecting an externally-detected
// span (e.g. a built-in entity) back into a tagged sequence.
func SchemePrefix(index int, indexes []int, scheme Scheme) string {
	first := indexes[0]
	last := indexes[len(indexes)-1]

	switch scheme {
	case SchemeIO:
		return "I"

	case SchemeBIO:
		if index == first {
			return "B"
		}
		return "I"

	case SchemeBILOU:
		if len(indexes) == 1 {
			return "U"
		}
		switch index {
		case first:
			return "B"
		case last:
			return "L"
		default:
			return "I"
		}

	default:
		return "I"
	}
}
