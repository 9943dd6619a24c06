package fswatch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/gitmover/pkg/config"
	"github.com/sidkik/gitmover/pkg/errors"
)

var fs = afero.NewOsFs()

// Watcher notifies about changes to the tracked paths in the home directory.
type Watcher struct {
	// Events receives a value whenever a tracked path changes. Bursts of
	// changes are coalesced into a single event.
	Events chan struct{}

	watcher *fsnotify.Watcher
}

// Watch starts watching the paths tracked by `cfg`. Tracked paths that don't
// exist are skipped. Changes to the backup directory, or to anything under
// the `ignore` paths, never produce events, so that writes made by gitmover
// itself don't trigger another backup.
func Watch(cfg config.Config, ignore ...string) (*Watcher, error) {
	ignore = append([]string{cfg.DirBackup}, ignore...)
	pathsToWatch, err := getPathsToWatch(cfg, ignore)
	if err != nil {
		return nil, errors.WithContext(err, "get paths")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WithContext(err, "create watcher")
	}

	for _, path := range pathsToWatch {
		if err := watcher.Add(path); err != nil {
			// Close the watcher so that we release the file handlers for the
			// previously added paths.
			if err := watcher.Close(); err != nil {
				log.WithError(err).Warn("Failed to close file watcher")
			}

			return nil, errors.WithContext(err, fmt.Sprintf("watch %q", path))
		}
	}

	go logErrors(watcher.Errors)
	return &Watcher{
		Events:  combineUpdates(watcher.Events, ignore),
		watcher: watcher,
	}, nil
}

// Close stops watching. Events is not closed.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func logErrors(errs <-chan error) {
	for err := range errs {
		log.WithError(err).Debug("File watcher error")
	}
}

func combineUpdates(updates <-chan fsnotify.Event, ignore []string) chan struct{} {
	combined := make(chan struct{}, 1)
	go func() {
		for event := range updates {
			if isIgnored(event.Name, ignore) {
				continue
			}

			select {
			case combined <- struct{}{}:
			default:
			}
		}
	}()
	return combined
}

func isIgnored(path string, ignore []string) bool {
	for _, root := range ignore {
		if config.Within(path, root) {
			return true
		}
	}
	return false
}

func getPathsToWatch(cfg config.Config, ignore []string) (paths []string, err error) {
	var tracked []string
	tracked = append(tracked, cfg.DirsLocal...)
	tracked = append(tracked, cfg.FilesLocal...)

	for _, rel := range tracked {
		path := cfg.HomePath(rel)
		if isIgnored(path, ignore) {
			continue
		}

		fi, err := fs.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				log.WithField("path", path).Warn("Not watching tracked path because it doesn't exist")
				continue
			}
			return nil, errors.WithContext(err, "stat")
		}

		paths = append(paths, path)
		if fi.Mode().IsDir() {
			// Because fsnotify doesn't watch directories recursively, we walk
			// the directory's contents and add all subdirectories and files.
			subpaths, err := getChildren(path, ignore)
			if err != nil {
				return nil, errors.WithContext(err, "get subdirs")
			}
			paths = append(paths, subpaths...)
		} else {
			// If the path is a file, then watch its parent directory as well
			// as the file itself. This way, if the file is removed and
			// re-added we'll notice.
			paths = append(paths, filepath.Dir(path))
		}
	}

	return dedupe(paths), nil
}

func getChildren(dir string, ignore []string) (paths []string, err error) {
	err = afero.Walk(fs, dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return errors.WithContext(err, "walk error")
		}

		if isIgnored(path, ignore) {
			if fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path != dir {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// dedupe removes repeated paths, such as the home directory when multiple
// tracked files live in it.
func dedupe(paths []string) (deduped []string) {
	seen := map[string]struct{}{}
	for _, path := range paths {
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		deduped = append(deduped, path)
	}
	return deduped
}
