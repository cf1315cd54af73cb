package resources

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LanguageMetadata is the decoded form of a language-resources subdirectory's
// metadata.json: the optional gazetteers, word clusters, and stemmer a
// language ships.
type LanguageMetadata struct {
	Gazetteers   []string `json:"gazetteers"`
	WordClusters []string `json:"word_clusters"`
	Stems        string   `json:"stems"`

	// ParquetGazetteers and ParquetWordClusters name large, column-oriented
	// resources shipped as parquet files (relative to the language
	// directory) instead of the flat-file layout the names above expect.
	ParquetGazetteers   map[string]string `json:"parquet_gazetteers"`
	ParquetWordClusters map[string]string `json:"parquet_word_clusters"`
}

func loadLanguageMetadata(languageDir string) (*LanguageMetadata, error) {
	metaPath := filepath.Join(languageDir, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %q", metaPath)
	}
	var meta LanguageMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "parsing %q", metaPath)
	}
	return &meta, nil
}
