// Package tagging implements the tag-scheme decoder: pure functions
// translating token-level tag sequences under the IO, BIO, and BILOU
// schemes to slot spans, and the inverse (span -> tags).
package tagging

import "strings"

// Scheme is a per-token tagging convention.
//
//go:generate enumer -type=Scheme -trimprefix=Scheme -transform=upper scheme.go
type Scheme int

const (
	SchemeIO Scheme = iota
	SchemeBIO
	SchemeBILOU
)

func (s Scheme) String() string {
	switch s {
	case SchemeIO:
		return "IO"
	case SchemeBIO:
		return "BIO"
	case SchemeBILOU:
		return "BILOU"
	default:
		return "UNKNOWN"
	}
}

// OutsideTag is the tag assigned to tokens outside any slot, in every scheme.
const OutsideTag = "O"

// SlotName extracts the slot name from a tag of the form "O", "I-X", "B-X",
// "L-X", or "U-X". It returns "" for the outside tag.
func SlotName(tag string) string {
	if tag == OutsideTag || tag == "" {
		return ""
	}
	if idx := strings.IndexByte(tag, '-'); idx >= 0 {
		return tag[idx+1:]
	}
	return tag
}

// prefix returns the single-character prefix of a non-outside tag ('I',
// 'B', 'L', or 'U'), or 0 for the outside tag.
func prefix(tag string) byte {
	if tag == OutsideTag || tag == "" {
		return 0
	}
	return tag[0]
}

func isOutside(tag string) bool {
	return tag == "" || tag == OutsideTag
}
