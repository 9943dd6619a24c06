package mirror

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/gitmover/pkg/config"
	"github.com/sidkik/gitmover/pkg/errors"
)

// Copy copies `src` onto `dst`, recursively if `src` is a directory. Both
// paths must be absolute. Existing files at the destination are overwritten,
// and directories are merged, so files that only exist in `dst` are left
// alone.
// If `src` doesn't exist, Copy returns errors.FileNotFound.
func Copy(src, dst string) error {
	return copyExcluding(src, dst, nil)
}

// copyExcluding is Copy, except that directories in `exclude` are never
// descended into. When `dst` lies inside `src`, it's excluded as well so that
// the walk never reads back what it just wrote.
func copyExcluding(src, dst string, exclude []string) error {
	fi, err := lstat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.FileNotFound{Path: src}
		}
		return errors.WithContext(err, "stat source")
	}

	if fi.IsDir() {
		if config.Within(dst, src) {
			exclude = append(append([]string{}, exclude...), dst)
		}
		err = copyDir(src, dst, exclude)
	} else {
		err = copyEntry(src, dst, fi)
	}
	if err != nil {
		return err
	}

	log.Debugf("Moved %s to %s", src, dst)
	return nil
}

func copyDir(src, dst string, exclude []string) error {
	return afero.Walk(fs, src, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return errors.WithContext(err, "walk")
		}

		if fi.IsDir() && path != src && isExcluded(path, exclude) {
			log.WithField("path", path).Debug("Not descending into excluded directory")
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			// This shouldn't happen because `path` is always a child of `src`.
			return errors.WithContext(err, "relative path")
		}
		target := filepath.Join(dst, rel)

		if fi.IsDir() {
			if err := clearConflicting(target, true); err != nil {
				return err
			}
			if err := fs.MkdirAll(target, fi.Mode().Perm()|0700); err != nil {
				return errors.WithContext(err, "make directory")
			}
			return nil
		}
		return copyEntry(path, target, fi)
	})
}

func isExcluded(path string, exclude []string) bool {
	for _, root := range exclude {
		if config.Within(path, root) {
			return true
		}
	}
	return false
}

// copyEntry copies a single non-directory entry.
func copyEntry(src, dst string, fi os.FileInfo) error {
	if err := clearConflicting(dst, false); err != nil {
		return err
	}

	if fi.Mode()&os.ModeSymlink != 0 {
		return copySymlink(src, dst)
	}
	return copyFile(src, dst, fi)
}

func copyFile(src, dst string, fileInfo os.FileInfo) error {
	dstParent := filepath.Dir(dst)
	dstParentExists, err := afero.DirExists(fs, dstParent)
	if err != nil {
		return errors.WithContext(err, "check if parent exists")
	}

	if !dstParentExists {
		if err := fs.MkdirAll(dstParent, 0755); err != nil {
			return errors.WithContext(err, "make parent")
		}
	}

	srcFile, err := fs.Open(src)
	if err != nil {
		return errors.WithContext(err, "open source")
	}
	defer srcFile.Close()

	dstFile, err := fs.Create(dst)
	if err != nil {
		return errors.WithContext(err, "open destination")
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return errors.WithContext(err, "copy")
	}

	if err := dstFile.Close(); err != nil {
		return errors.WithContext(err, "close destination")
	}

	if err := fs.Chmod(dst, fileInfo.Mode().Perm()); err != nil {
		return errors.WithContext(err, "set file mode")
	}

	// Change the modification time as the last step so that it doesn't get
	// reset by other file operations.
	if err := fs.Chtimes(dst, fileInfo.ModTime(), fileInfo.ModTime()); err != nil {
		return errors.WithContext(err, "set file modtime")
	}
	return nil
}

func copySymlink(src, dst string) error {
	reader, canRead := fs.(afero.LinkReader)
	linker, canLink := fs.(afero.Linker)
	if !canRead || !canLink {
		log.WithField("path", src).Warn("Skipping symlink because the filesystem doesn't support links")
		return nil
	}

	target, err := reader.ReadlinkIfPossible(src)
	if err != nil {
		return errors.WithContext(err, "read link")
	}

	if err := fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.WithContext(err, "make parent")
	}

	if err := linker.SymlinkIfPossible(target, dst); err != nil {
		return errors.WithContext(err, "create link")
	}
	return nil
}

// clearConflicting removes whatever exists at `path` if it can't be
// overwritten in place by an entry of the wanted type. For example, a file
// being copied over a directory replaces the directory.
func clearConflicting(path string, wantDir bool) error {
	fi, err := lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WithContext(err, "stat destination")
	}

	isSymlink := fi.Mode()&os.ModeSymlink != 0
	if fi.IsDir() == wantDir && !isSymlink {
		return nil
	}

	if err := fs.RemoveAll(path); err != nil {
		return errors.WithContext(err, "remove conflicting destination")
	}
	return nil
}

func lstat(path string) (os.FileInfo, error) {
	if lstater, ok := fs.(afero.Lstater); ok {
		fi, _, err := lstater.LstatIfPossible(path)
		return fi, err
	}
	return fs.Stat(path)
}
