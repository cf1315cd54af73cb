package resources

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Gazetteer is a finite, immutable-after-load set of normalized tokens used
// as a boolean feature by the slot tagger.
type Gazetteer struct {
	Name                   string
	Language               string
	AutomaticallyExtensible bool

	tokens map[string]struct{}
}

// Contains reports whether normalizedToken belongs to the gazetteer.
func (g *Gazetteer) Contains(normalizedToken string) bool {
	_, ok := g.tokens[normalizedToken]
	return ok
}

// Len returns the number of tokens held by the gazetteer.
func (g *Gazetteer) Len() int {
	return len(g.tokens)
}

func loadGazetteer(languageDir, language, name string) (*Gazetteer, error) {
	path := filepath.Join(languageDir, "gazetteers", name+".txt")
	g := &Gazetteer{
		Name:                    name,
		Language:                language,
		AutomaticallyExtensible: true,
		tokens:                  make(map[string]struct{}),
	}
	err := mmapLines(path, func(line []byte) {
		token := strings.TrimSpace(string(line))
		if token == "" {
			return
		}
		g.tokens[token] = struct{}{}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "loading gazetteer %q for language %q", name, language)
	}
	return g, nil
}

// NewGazetteer builds a Gazetteer directly from an in-memory token set,
// bypassing the on-disk loader. Used when gazetteer entries come from a
// parquet-backed entity dictionary rather than the flat-file layout
// loadGazetteer expects.
func NewGazetteer(language, name string, automaticallyExtensible bool, tokens []string) *Gazetteer {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return &Gazetteer{
		Name:                    name,
		Language:                language,
		AutomaticallyExtensible: automaticallyExtensible,
		tokens:                  set,
	}
}

// CheckExtensibility logs (but does not fail) when a caller attempts to add
// or recognize a token outside a non-extensible gazetteer's static set, per
// the original training pipeline's gazetteer.rs semantics. Callers that
// populate a gazetteer from a model's declared entity utterances (rather
// than the gazetteer's own file) should call this once per candidate token.
func (g *Gazetteer) CheckExtensibility(token string) {
	if g.AutomaticallyExtensible {
		return
	}
	if !g.Contains(token) {
		klog.V(4).InfoS("token outside non-extensible gazetteer", "gazetteer", g.Name, "language", g.Language, "token", token)
	}
}
