package resources

import (
	"bytes"
	"path/filepath"

	"github.com/pkg/errors"
)

// Stemmer is an immutable-after-load word→stem table for one language.
type Stemmer struct {
	Language string
	table    map[string]string
}

// Stem returns the stem for word, or word unchanged if it has no entry.
func (s *Stemmer) Stem(word string) string {
	if stem, ok := s.table[word]; ok {
		return stem
	}
	return word
}

func loadStemmer(languageDir, language, fileName string) (*Stemmer, error) {
	path := filepath.Join(languageDir, fileName)
	s := &Stemmer{Language: language, table: make(map[string]string)}
	err := mmapLines(path, func(line []byte) {
		parts := bytes.SplitN(line, []byte{'\t'}, 2)
		if len(parts) != 2 {
			return
		}
		word := string(bytes.TrimSpace(parts[0]))
		stem := string(bytes.TrimSpace(parts[1]))
		if word == "" {
			return
		}
		s.table[word] = stem
	})
	if err != nil {
		return nil, errors.Wrapf(err, "loading stemmer for language %q", language)
	}
	return s, nil
}
