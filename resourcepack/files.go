package resourcepack

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// DownloadInfo fetches (or, for local repos, walks) the file listing for
// this repo. It is idempotent unless force is true.
func (r *Repo) DownloadInfo(force bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.info != nil && !force {
		return nil
	}

	if r.IsLocal() {
		var manifest repoManifest
		err := filepath.Walk(r.LocalDir, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(r.LocalDir, p)
			if err != nil {
				return err
			}
			manifest.Siblings = append(manifest.Siblings, struct {
				Name string `json:"name"`
			}{Name: filepath.ToSlash(rel)})
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "walking local repo %q", r.LocalDir)
		}
		r.info = &manifest
		return nil
	}

	url := strings.TrimRight(r.BaseURL, "/") + "/" + strings.TrimLeft(r.ID, "/") + "/manifest.json"
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, "building manifest request for %q", r.ID)
	}
	if r.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.authToken)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "fetching manifest for %q", r.ID)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("fetching manifest for %q: unexpected status %s", r.ID, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "reading manifest body for %q", r.ID)
	}
	var manifest repoManifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return errors.Wrapf(err, "parsing manifest for %q", r.ID)
	}
	r.info = &manifest
	return nil
}

// DownloadAll materializes every file the repo lists into LocalDir, so a
// remote language-resources pack or assistant bundle can be handed to
// resources.Registry.Load / config.Load as a plain local directory
// afterward. It is a no-op for local repos.
func (r *Repo) DownloadAll() error {
	if r.IsLocal() {
		return nil
	}
	for name, err := range r.IterFileNames() {
		if err != nil {
			return err
		}
		if _, err := r.DownloadFile(name); err != nil {
			return errors.Wrapf(err, "downloading %q from repo %q", name, r.ID)
		}
	}
	return nil
}

// IterFileNames iterates over the file names stored in the repo. It doesn't
// trigger the downloading of the repo's file contents, only of the file
// listing.
func (r *Repo) IterFileNames() iter.Seq2[string, error] {
	err := r.DownloadInfo(false)
	if err != nil {
		return func(yield func(string, error) bool) {
			yield("", err)
		}
	}
	return func(yield func(string, error) bool) {
		for _, si := range r.info.Siblings {
			fileName := si.Name
			if path.IsAbs(fileName) || strings.Contains(fileName, "..") {
				yield("", errors.Errorf("repo %q contains illegal file name %q", r.ID, fileName))
				return
			}
			if !yield(fileName, nil) {
				return
			}
		}
	}
}
