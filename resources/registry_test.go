package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeLanguageFixture(t *testing.T, root, language string) {
	t.Helper()
	langDir := filepath.Join(root, language)
	require.NoError(t, os.MkdirAll(filepath.Join(langDir, "gazetteers"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(langDir, "word_clusters"), 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(langDir, "metadata.json"), []byte(`{
		"gazetteers": ["animal"],
		"word_clusters": ["brown"],
		"stems": "stems.txt"
	}`), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(langDir, "gazetteers", "animal.txt"), []byte("bird\ncat\ndog\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(langDir, "word_clusters", "brown.txt"), []byte("bird\t12\ncat\t7\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(langDir, "stems.txt"), []byte("birds\tbird\ncats\tcat\n"), 0o644))
}

func TestRegistry_LoadAndQuery(t *testing.T) {
	root := t.TempDir()
	writeLanguageFixture(t, root, "en")

	reg := NewRegistry()
	require.NoError(t, reg.Load(root))

	gaz := reg.Gazetteer("en", "animal")
	require.NotNil(t, gaz)
	require.True(t, gaz.Contains("bird"))
	require.False(t, gaz.Contains("elephant"))

	clusterer := reg.WordClusterer("en", "brown")
	require.NotNil(t, clusterer)
	id, ok := clusterer.ClusterID("bird")
	require.True(t, ok)
	require.Equal(t, "12", id)

	stemmer := reg.Stemmer("en")
	require.NotNil(t, stemmer)
	require.Equal(t, "bird", stemmer.Stem("birds"))
	require.Equal(t, "unknownword", stemmer.Stem("unknownword"))
}

func TestRegistry_LoadAccumulatesLanguages(t *testing.T) {
	root := t.TempDir()
	writeLanguageFixture(t, root, "en")

	reg := NewRegistry()
	require.NoError(t, reg.Load(root))

	root2 := t.TempDir()
	writeLanguageFixture(t, root2, "fr")
	require.NoError(t, reg.Load(root2))

	require.NotNil(t, reg.Gazetteer("en", "animal"))
	require.NotNil(t, reg.Gazetteer("fr", "animal"))
}

func TestRegistry_Clear(t *testing.T) {
	root := t.TempDir()
	writeLanguageFixture(t, root, "en")

	reg := NewRegistry()
	require.NoError(t, reg.Load(root))
	require.NotNil(t, reg.Gazetteer("en", "animal"))

	reg.Clear()
	require.Nil(t, reg.Gazetteer("en", "animal"))
	require.Nil(t, reg.Stemmer("en"))
}

func TestRegistry_MissingResourceIsNil(t *testing.T) {
	reg := NewRegistry()
	require.Nil(t, reg.Gazetteer("en", "animal"))
	require.Nil(t, reg.WordClusterer("en", "brown"))
	require.Nil(t, reg.Stemmer("en"))
}
