// Package resourcepack implements the directory-or-archive repository
// abstraction that backs both the process-wide resource registry (stemmers,
// clusterers, gazetteers) and assistant configuration loading: a Repo is
// either a plain local directory or a remote bundle that gets downloaded
// once into a local cache and then treated exactly like a local directory.
//
// It is adapted from the model-hub repository abstraction this module was
// built from: same locked-download discipline, same file-name validation,
// same "download once, read many times" contract.
package resourcepack

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/voicebox/nlu-engine/internal/downloader"
)

// DefaultDirCreationPerm is the permission used when creating cache
// directories for downloaded resource packs.
const DefaultDirCreationPerm = 0o755

// Repo is a read-only view over a set of named files, rooted either at a
// local directory or at a remote base URL whose files are downloaded into a
// local cache on first access.
type Repo struct {
	// ID identifies the repo, e.g. "language-resources/en" or
	// "assistants/my-assistant". For a local repo it is purely informational.
	ID string

	// BaseURL is the remote root this repo is served from. Empty means the
	// repo is local-only, rooted at LocalDir.
	BaseURL string

	// LocalDir is the directory files are read from (and, for remote repos,
	// downloaded into).
	LocalDir string

	// MaxParallelDownload bounds concurrent file downloads for remote repos.
	MaxParallelDownload int

	authToken       string
	downloadManager *downloader.Manager
	httpClient      *http.Client

	mu   sync.Mutex
	info *repoManifest
}

// repoManifest is the remote file listing for a Repo backed by BaseURL. It is
// fetched once (lazily) and cached for the life of the Repo.
type repoManifest struct {
	Siblings []struct {
		Name string `json:"name"`
	} `json:"siblings"`
}

// NewLocal creates a Repo rooted at an existing local directory.
func NewLocal(id, dir string) *Repo {
	return &Repo{ID: id, LocalDir: dir, MaxParallelDownload: 1}
}

// NewRemote creates a Repo that downloads files from baseURL+"/"+id into
// cacheDir on first access.
func NewRemote(id, baseURL, cacheDir string) *Repo {
	return &Repo{
		ID:                  id,
		BaseURL:             baseURL,
		LocalDir:            path.Join(cacheDir, sanitizeID(id)),
		MaxParallelDownload: 4,
	}
}

func sanitizeID(id string) string {
	return strings.ReplaceAll(id, "/", "__")
}

// WithAuthToken attaches a bearer token used for remote downloads.
func (r *Repo) WithAuthToken(token string) *Repo {
	r.authToken = token
	return r
}

// IsLocal reports whether this repo has no remote base (every file must
// already exist under LocalDir).
func (r *Repo) IsLocal() bool {
	return r.BaseURL == ""
}

func (r *Repo) getDownloadManager() *downloader.Manager {
	if r.downloadManager == nil {
		r.downloadManager = downloader.New().MaxParallel(r.MaxParallelDownload).WithAuthToken(r.authToken)
		if r.httpClient != nil {
			r.downloadManager.WithHTTPClient(r.httpClient)
		}
	}
	return r.downloadManager
}

// HasFile reports whether the named file exists in the repo. For remote
// repos this downloads the file listing (but not the file itself) if it
// hasn't been fetched yet.
func (r *Repo) HasFile(name string) bool {
	if r.IsLocal() {
		_, err := os.Stat(path.Join(r.LocalDir, name))
		return err == nil
	}
	if err := r.DownloadInfo(false); err != nil {
		return false
	}
	for fileName := range r.IterFileNames() {
		if fileName == name {
			return true
		}
	}
	return false
}

// DownloadFile ensures the named file is present locally and returns its
// local path. For a local repo this is just validation; for a remote repo
// it triggers a locked download on first access.
func (r *Repo) DownloadFile(name string) (string, error) {
	if path.IsAbs(name) || strings.Contains(name, "..") {
		return "", errors.Errorf("repo %q: illegal file name %q", r.ID, name)
	}
	localPath := path.Join(r.LocalDir, name)
	if r.IsLocal() {
		if _, err := os.Stat(localPath); err != nil {
			return "", errors.Wrapf(err, "file %q not found in repo %q", name, r.ID)
		}
		return localPath, nil
	}

	url := strings.TrimRight(r.BaseURL, "/") + "/" + strings.TrimLeft(r.ID, "/") + "/" + name
	if err := r.lockedDownload(url, localPath, false, nil); err != nil {
		return "", err
	}
	return localPath, nil
}
