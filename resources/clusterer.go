package resources

import (
	"bytes"
	"path/filepath"

	"github.com/pkg/errors"
)

// WordClusterer is an immutable-after-load word→cluster-id table
// (e.g. Brown clusters) for one language.
type WordClusterer struct {
	Language string
	Name     string
	clusters map[string]string
}

// ClusterID returns the cluster id for word (lowercased lookup key) and
// whether it was found.
func (c *WordClusterer) ClusterID(word string) (string, bool) {
	id, ok := c.clusters[word]
	return id, ok
}

// NewWordClusterer builds a WordClusterer directly from an in-memory table,
// bypassing the on-disk loader. Useful for clusterers assembled from a
// parquet-backed dictionary rather than the flat-file layout loadWordClusterer
// expects.
func NewWordClusterer(language, name string, clusters map[string]string) *WordClusterer {
	table := make(map[string]string, len(clusters))
	for k, v := range clusters {
		table[k] = v
	}
	return &WordClusterer{Language: language, Name: name, clusters: table}
}

func loadWordClusterer(languageDir, language, name string) (*WordClusterer, error) {
	path := filepath.Join(languageDir, "word_clusters", name+".txt")
	c := &WordClusterer{Language: language, Name: name, clusters: make(map[string]string)}
	err := mmapLines(path, func(line []byte) {
		parts := bytes.SplitN(line, []byte{'\t'}, 2)
		if len(parts) != 2 {
			return
		}
		word := string(bytes.TrimSpace(parts[0]))
		cluster := string(bytes.TrimSpace(parts[1]))
		if word == "" {
			return
		}
		c.clusters[word] = cluster
	})
	if err != nil {
		return nil, errors.Wrapf(err, "loading word clusterer %q for language %q", name, language)
	}
	return c, nil
}
