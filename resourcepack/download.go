package resourcepack

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/voicebox/nlu-engine/internal/downloader"
)

// lockedDownload fetches url into filePath, using a ".lock" sibling file to
// coordinate concurrent processes/goroutines downloading the same file, and
// a ".downloading" temporary file so a reader never observes a partial
// download.
func (r *Repo) lockedDownload(url, filePath string, forceDownload bool, progress downloader.ProgressCallback) error {
	if _, err := os.Stat(filePath); err == nil {
		if !forceDownload {
			return nil
		}
		if err := os.Remove(filePath); err != nil {
			return errors.Wrapf(err, "failed to remove %q while force-downloading %q", filePath, url)
		}
	}

	ctx := context.Background()
	if err := os.MkdirAll(filepath.Dir(filePath), DefaultDirCreationPerm); err != nil {
		return errors.Wrapf(err, "failed to create directory for file %q", filePath)
	}

	lockPath := filePath + ".lock"
	var mainErr error
	errLock := execOnFileLock(lockPath, func() {
		if _, err := os.Stat(filePath); err == nil {
			// Some concurrent other process (or goroutine) already downloaded the file.
			return
		}

		tmpPath := filePath + ".downloading"
		tmpFile, err := os.Create(tmpPath)
		if err != nil {
			mainErr = errors.Wrapf(err, "creating temporary file for download in %q", tmpPath)
			return
		}
		var tmpFileClosed bool
		defer func() {
			if !tmpFileClosed {
				if err := tmpFile.Close(); err != nil {
					klog.ErrorS(err, "failed closing temporary download file", "path", tmpPath)
				}
				if err := os.Remove(tmpPath); err != nil {
					klog.ErrorS(err, "failed removing temporary download file", "path", tmpPath)
				}
			}
		}()

		downloadManager := r.getDownloadManager()
		mainErr = downloadManager.Download(ctx, url, tmpPath, progress)
		if mainErr != nil {
			mainErr = errors.WithMessagef(mainErr, "while downloading %q to %q", url, tmpPath)
			return
		}

		tmpFileClosed = true
		if err := tmpFile.Close(); err != nil {
			mainErr = errors.Wrapf(err, "failed to close temporary download file %q", tmpPath)
			return
		}
		if err := os.Rename(tmpPath, filePath); err != nil {
			mainErr = errors.Wrapf(err, "failed to move downloaded file %q to %q", tmpPath, filePath)
			return
		}

		if err := os.Remove(lockPath); err != nil {
			klog.ErrorS(err, "failed removing lock file", "path", lockPath)
		}
	})
	if mainErr != nil {
		return mainErr
	}
	if errLock != nil {
		return errors.WithMessagef(errLock, "while locking %q to download %q", lockPath, url)
	}
	return nil
}

// execOnFileLock opens (or creates) lockPath, locks it, and executes fn.
// If lockPath is already locked it polls with a randomized 1-2 second
// period until the lock is acquired. The lock file itself is not removed;
// callers that know no further execOnFileLock calls will target the same
// path may remove it from within fn.
func execOnFileLock(lockPath string, fn func()) (err error) {
	fileLock := flock.New(lockPath)

	for {
		locked, lockErr := fileLock.TryLock()
		if lockErr != nil {
			return errors.Wrapf(lockErr, "while trying to lock %q", lockPath)
		}
		if locked {
			break
		}
		time.Sleep(time.Millisecond * time.Duration(1000+rand.Intn(1000)))
	}

	defer func() {
		if unlockErr := fileLock.Unlock(); unlockErr != nil {
			if err == nil {
				err = errors.Wrapf(unlockErr, "unlocking file %q", lockPath)
			} else {
				klog.ErrorS(unlockErr, "error unlocking file", "path", lockPath)
			}
		}
	}()

	fn()
	return
}
