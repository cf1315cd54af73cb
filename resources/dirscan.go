package resources

import (
	"os"

	"github.com/pkg/errors"
)

// readLanguageDirs lists the immediate subdirectories of root, each of
// which is expected to be a per-language resources directory.
func readLanguageDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "reading language resources directory %q", root)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}
