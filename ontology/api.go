// Package ontology defines the contract for the built-in-entity parser:
// the external collaborator that recognizes numbers, dates, durations,
// money, ordinals, and temperatures. Training and the actual NLP behind
// these extractions are out of scope for this package; it only defines
// the interface the rest of the engine programs against, plus a small
// reference implementation usable in tests and for languages that don't
// need a heavier recognizer.
package ontology

import "github.com/voicebox/nlu-engine/preprocessing"

// Kind enumerates the built-in entity kinds the ontology parser recognizes.
// ModelIdentifier gives the identifier each kind carries in serialized models.
//
//go:generate enumer -type=Kind -transform=snake -text -json api.go
type Kind int

const (
	KindAmountOfMoney Kind = iota
	KindDuration
	KindNumber
	KindOrdinal
	KindTemperature
	KindTime
)

// ModelIdentifier returns the identifier string used for this kind in
// serialized assistant models (e.g. "snips/amountOfMoney").
func (k Kind) ModelIdentifier() string {
	switch k {
	case KindAmountOfMoney:
		return "snips/amountOfMoney"
	case KindDuration:
		return "snips/duration"
	case KindNumber:
		return "snips/number"
	case KindOrdinal:
		return "snips/ordinal"
	case KindTemperature:
		return "snips/temperature"
	case KindTime:
		return "snips/datetime"
	default:
		return "snips/unknown"
	}
}

// Detection is one built-in entity found in a piece of text.
type Detection struct {
	Value     string
	CharRange preprocessing.CharRange
	Kind      Kind
}

// Parser extracts built-in entities from text. scope restricts which kinds
// to look for; a nil or empty scope means "all kinds" (engine.GetSlots
// passes nil).
type Parser interface {
	Extract(text string, language string, scope []Kind) ([]Detection, error)
}
