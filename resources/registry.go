// Package resources implements the process-wide, read-only resource
// registry: stemmers, word clusterers, and gazetteers, keyed by language.
// It is a two-phase registry: Load accumulates resources for one or more
// languages, Clear atomically resets to empty. Readers never
// take a lock; they atomically load an immutable snapshot, so a Load or
// Clear racing with in-flight requests is observed as either the pre- or
// post-mutation state, never a torn one.
package resources

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// snapshot is the immutable, process-wide view of loaded resources.
type snapshot struct {
	stemmers   map[string]*Stemmer
	clusterers map[string]map[string]*WordClusterer // language -> name -> clusterer
	gazetteers map[string]map[string]*Gazetteer     // language -> name -> gazetteer
}

func emptySnapshot() *snapshot {
	return &snapshot{
		stemmers:   make(map[string]*Stemmer),
		clusterers: make(map[string]map[string]*WordClusterer),
		gazetteers: make(map[string]map[string]*Gazetteer),
	}
}

// Registry is the process-wide resource table. Create one with
// NewRegistry; the zero value holds no snapshot and is not usable. Registry is safe for concurrent use by any number of readers and
// writers; writers serialize on an internal mutex, readers never block.
type Registry struct {
	current atomic.Pointer[snapshot]
	writeMu sync.Mutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.current.Store(emptySnapshot())
	return r
}

// Load reads a language-resources directory (one subdirectory per language,
// each with a metadata.json) and merges its resources into the registry.
// Load may be called multiple times; it accumulates languages rather than
// replacing previously loaded ones. No request may be in flight across a
// concurrent Clear — Load only guarantees atomicity with respect to other
// Load/Clear calls, not in-flight reads started before it returns.
func (r *Registry) Load(languageResourcesDir string) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	lockPath := filepath.Join(languageResourcesDir, ".registry.lock")
	fileLock := flock.New(lockPath)
	if err := fileLock.Lock(); err != nil {
		return errors.Wrapf(err, "locking %q", lockPath)
	}
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			klog.ErrorS(err, "failed unlocking resource registry lock", "path", lockPath)
		}
	}()

	entries, err := readLanguageDirs(languageResourcesDir)
	if err != nil {
		return err
	}

	// Copy-on-write: build the next snapshot from the current one plus the
	// newly loaded languages, then swap it in atomically.
	prev := r.current.Load()
	next := &snapshot{
		stemmers:   cloneStemmers(prev.stemmers),
		clusterers: cloneClusterers(prev.clusterers),
		gazetteers: cloneGazetteers(prev.gazetteers),
	}

	for _, language := range entries {
		languageDir := filepath.Join(languageResourcesDir, language)
		meta, err := loadLanguageMetadata(languageDir)
		if err != nil {
			return err
		}

		if meta.Stems != "" {
			stemmer, err := loadStemmer(languageDir, language, meta.Stems)
			if err != nil {
				return err
			}
			next.stemmers[language] = stemmer
		}

		if len(meta.WordClusters) > 0 {
			if next.clusterers[language] == nil {
				next.clusterers[language] = make(map[string]*WordClusterer)
			}
			for _, name := range meta.WordClusters {
				clusterer, err := loadWordClusterer(languageDir, language, name)
				if err != nil {
					return err
				}
				next.clusterers[language][name] = clusterer
			}
		}

		if len(meta.Gazetteers) > 0 {
			if next.gazetteers[language] == nil {
				next.gazetteers[language] = make(map[string]*Gazetteer)
			}
			for _, name := range meta.Gazetteers {
				gazetteer, err := loadGazetteer(languageDir, language, name)
				if err != nil {
					return err
				}
				next.gazetteers[language][name] = gazetteer
			}
		}

		if len(meta.ParquetGazetteers) > 0 {
			if next.gazetteers[language] == nil {
				next.gazetteers[language] = make(map[string]*Gazetteer)
			}
			for name, rel := range meta.ParquetGazetteers {
				gazetteer, err := loadGazetteerFromParquet(filepath.Join(languageDir, rel), language, name, true)
				if err != nil {
					return err
				}
				next.gazetteers[language][name] = gazetteer
			}
		}

		if len(meta.ParquetWordClusters) > 0 {
			if next.clusterers[language] == nil {
				next.clusterers[language] = make(map[string]*WordClusterer)
			}
			for name, rel := range meta.ParquetWordClusters {
				clusterer, err := loadWordClustererFromParquet(filepath.Join(languageDir, rel), language, name)
				if err != nil {
					return err
				}
				next.clusterers[language][name] = clusterer
			}
		}
	}

	r.current.Store(next)
	return nil
}

// Clear atomically resets the registry to empty. No request may be in
// flight across Clear.
func (r *Registry) Clear() {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.current.Store(emptySnapshot())
}

// RegisterGazetteer installs gaz for language, overwriting any previously
// loaded gazetteer of the same name. Unlike Load, the gazetteer need not
// come from a language-resources directory: callers build one in memory
// (e.g. config.MergeEntityGazetteer, seeding a gazetteer from an assistant
// bundle's declared entity utterances) and hand it to the registry here so
// the CRF's gaz= features and Gazetteer.CheckExtensibility see it like any
// other loaded gazetteer.
func (r *Registry) RegisterGazetteer(language string, gaz *Gazetteer) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	prev := r.current.Load()
	next := &snapshot{
		stemmers:   cloneStemmers(prev.stemmers),
		clusterers: cloneClusterers(prev.clusterers),
		gazetteers: cloneGazetteers(prev.gazetteers),
	}
	if next.gazetteers[language] == nil {
		next.gazetteers[language] = make(map[string]*Gazetteer)
	}
	next.gazetteers[language][gaz.Name] = gaz
	r.current.Store(next)
}

// Stemmer returns the stemmer loaded for language, or nil if none is loaded.
func (r *Registry) Stemmer(language string) *Stemmer {
	return r.current.Load().stemmers[language]
}

// WordClusterer returns the named word clusterer loaded for language, or nil.
func (r *Registry) WordClusterer(language, name string) *WordClusterer {
	byName := r.current.Load().clusterers[language]
	if byName == nil {
		return nil
	}
	return byName[name]
}

// Gazetteer returns the named gazetteer loaded for language, or nil.
func (r *Registry) Gazetteer(language, name string) *Gazetteer {
	byName := r.current.Load().gazetteers[language]
	if byName == nil {
		return nil
	}
	return byName[name]
}

func cloneStemmers(m map[string]*Stemmer) map[string]*Stemmer {
	out := make(map[string]*Stemmer, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneClusterers(m map[string]map[string]*WordClusterer) map[string]map[string]*WordClusterer {
	out := make(map[string]map[string]*WordClusterer, len(m))
	for k, v := range m {
		inner := make(map[string]*WordClusterer, len(v))
		for k2, v2 := range v {
			inner[k2] = v2
		}
		out[k] = inner
	}
	return out
}

func cloneGazetteers(m map[string]map[string]*Gazetteer) map[string]map[string]*Gazetteer {
	out := make(map[string]map[string]*Gazetteer, len(m))
	for k, v := range m {
		inner := make(map[string]*Gazetteer, len(v))
		for k2, v2 := range v {
			inner[k2] = v2
		}
		out[k] = inner
	}
	return out
}
