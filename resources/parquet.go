package resources

import (
	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
)

// gazetteerRow is one record of a parquet-backed entity dictionary: a
// single normalized token belonging to the gazetteer.
type gazetteerRow struct {
	Token string `parquet:"token"`
}

// clusterRow is one record of a parquet-backed word-cluster table.
type clusterRow struct {
	Word    string `parquet:"word"`
	Cluster string `parquet:"cluster"`
}

// loadGazetteerFromParquet builds a Gazetteer from a column-oriented entity
// dictionary. Large, frequently-refreshed entities (cities, artists, media
// titles) ship this way instead of as a flat-file token list, mirroring
// how bulk HF dataset exports are read elsewhere in the stack.
func loadGazetteerFromParquet(path, language, name string, automaticallyExtensible bool) (*Gazetteer, error) {
	rows, err := parquet.ReadFile[gazetteerRow](path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading parquet gazetteer %q for language %q", name, language)
	}
	tokens := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Token == "" {
			continue
		}
		tokens = append(tokens, row.Token)
	}
	return NewGazetteer(language, name, automaticallyExtensible, tokens), nil
}

// loadWordClustererFromParquet builds a WordClusterer from a column-oriented
// word->cluster-id table.
func loadWordClustererFromParquet(path, language, name string) (*WordClusterer, error) {
	rows, err := parquet.ReadFile[clusterRow](path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading parquet word clusterer %q for language %q", name, language)
	}
	table := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.Word == "" {
			continue
		}
		table[row.Word] = row.Cluster
	}
	return NewWordClusterer(language, name, table), nil
}
