package config

import (
	"path/filepath"
	"strings"

	"github.com/sidkik/gitmover/pkg/errors"
)

// HomePath resolves a tracked path against the home directory.
func (c Config) HomePath(rel string) string {
	return filepath.Join(c.HomeDir, rel)
}

// BackupPath resolves a tracked path against the backup directory.
func (c Config) BackupPath(rel string) string {
	return filepath.Join(c.DirBackup, rel)
}

// AddDir tracks the given directory. It returns false if the directory was
// already tracked.
func (c *Config) AddDir(path string) bool {
	path = normalizeTracked(path)
	if contains(c.DirsLocal, path) {
		return false
	}
	c.DirsLocal = append(c.DirsLocal, path)
	return true
}

// AddFile tracks the given file. It returns false if the file was already
// tracked.
func (c *Config) AddFile(path string) bool {
	path = normalizeTracked(path)
	if contains(c.FilesLocal, path) {
		return false
	}
	c.FilesLocal = append(c.FilesLocal, path)
	return true
}

// Remove stops tracking the given path. Paths that end with a slash refer to
// tracked directories, and all other paths refer to tracked files. It
// returns false if nothing was removed.
func (c *Config) Remove(path string) bool {
	if strings.HasSuffix(path, "/") {
		var removed bool
		c.DirsLocal, removed = without(c.DirsLocal, normalizeTracked(path))
		return removed
	}

	var removed bool
	c.FilesLocal, removed = without(c.FilesLocal, normalizeTracked(path))
	return removed
}

// Validate checks the invariants that must hold before the config is used to
// mirror files.
func (c Config) Validate() error {
	if c.DirBackup == "" {
		return errors.MissingFieldError{Field: "dir_backup"}
	}
	if c.HomeDir == "" {
		return errors.MissingFieldError{Field: "home_dir"}
	}
	return c.ValidateTracked()
}

// ValidateTracked checks that every tracked path can be mirrored safely.
func (c Config) ValidateTracked() error {
	for _, paths := range [][]string{c.DirsLocal, c.FilesLocal} {
		for _, path := range paths {
			if err := validateTracked(path); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateTracked(path string) error {
	clean := normalizeTracked(path)
	switch {
	case path == "" || clean == ".":
		return errors.InvalidPathError{Path: path, Reason: "refers to the whole root"}
	case filepath.IsAbs(path):
		return errors.InvalidPathError{Path: path, Reason: "must be relative"}
	case clean == ".." || strings.HasPrefix(clean, "../"):
		return errors.InvalidPathError{Path: path, Reason: "escapes the root"}
	case clean == MetadataDir || strings.HasPrefix(clean, MetadataDir+"/"):
		return errors.InvalidPathError{Path: path, Reason: "is reserved for git metadata"}
	}
	return nil
}

func normalizeTracked(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

func contains(slc []string, s string) bool {
	for _, x := range slc {
		if x == s {
			return true
		}
	}
	return false
}

func without(slc []string, s string) ([]string, bool) {
	filtered := make([]string, 0, len(slc))
	for _, x := range slc {
		if x != s {
			filtered = append(filtered, x)
		}
	}
	return filtered, len(filtered) != len(slc)
}

// Within returns whether `path` is `root` or lies somewhere below it. Both
// paths must be absolute.
func Within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, "../"))
}
