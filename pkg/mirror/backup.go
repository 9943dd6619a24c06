package mirror

import (
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/gitmover/pkg/config"
	"github.com/sidkik/gitmover/pkg/errors"
	"github.com/sidkik/gitmover/pkg/history"
)

// Report describes the outcome of mirroring the tracked paths.
type Report struct {
	// Copied contains the tracked paths that were mirrored.
	Copied []string

	// Skipped contains the tracked paths that couldn't be mirrored, along
	// with the reason.
	Skipped []SkippedPath
}

// SkippedPath is a tracked path that failed to mirror.
type SkippedPath struct {
	Path string
	Err  error
}

// EnsureBackupRoot creates the backup directory if it doesn't exist yet.
func EnsureBackupRoot(cfg config.Config) error {
	if cfg.DirBackup == "" {
		return errors.MissingFieldError{Field: "dir_backup"}
	}

	exists, err := afero.DirExists(fs, cfg.DirBackup)
	if err != nil {
		return errors.WithContext(err, "check backup directory")
	}

	if !exists {
		if err := fs.MkdirAll(cfg.DirBackup, 0755); err != nil {
			return errors.WithContext(err, "create backup directory")
		}
		log.WithField("path", cfg.DirBackup).Info("Created backup directory")
	}
	return nil
}

// Prepare replaces the contents of the backup directory with fresh copies of
// the tracked paths. Git's metadata directory is preserved.
// Failing to list or clear the backup directory is fatal and aborts before
// anything is copied. Failing to copy an individual tracked path is not.
func Prepare(cfg config.Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, errors.WithContext(err, "validate config")
	}

	if err := EnsureBackupRoot(cfg); err != nil {
		return Report{}, err
	}

	log.Warn("Don't interrupt this process! Preparing the backup is not an atomic operation.")

	if err := clearBackup(cfg.DirBackup); err != nil {
		return Report{}, errors.WithContext(err, "clear backup directory")
	}

	return mirrorTracked(cfg, cfg.HomePath, cfg.BackupPath, []string{cfg.DirBackup}), nil
}

// Restore copies the tracked paths from the backup directory back into the
// home directory, overwriting what's there. Nothing in the home directory is
// ever removed.
func Restore(cfg config.Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, errors.WithContext(err, "validate config")
	}

	if err := EnsureBackupRoot(cfg); err != nil {
		return Report{}, err
	}

	return mirrorTracked(cfg, cfg.BackupPath, cfg.HomePath, nil), nil
}

func clearBackup(root string) error {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return errors.WithContext(err, "list")
	}

	history.Log.WithFields(log.Fields{
		"operation": "clear-backup",
		"path":      root,
	}).Info("Clearing backup directory")

	for _, entry := range entries {
		if entry.Name() == config.MetadataDir {
			continue
		}

		if err := fs.RemoveAll(filepath.Join(root, entry.Name())); err != nil {
			return errors.WithContext(err, "remove "+entry.Name())
		}
	}
	return nil
}

// mirrorTracked copies all tracked directories, and then all tracked files,
// in the order they're declared in the config. Directories in `exclude` are
// skipped, which keeps a backup directory nested inside a tracked directory
// from being copied into itself.
func mirrorTracked(cfg config.Config, from, to func(string) string, exclude []string) (report Report) {
	var tracked []string
	tracked = append(tracked, cfg.DirsLocal...)
	tracked = append(tracked, cfg.FilesLocal...)

	for _, rel := range tracked {
		if err := copyExcluding(from(rel), to(rel), exclude); err != nil {
			log.WithError(err).WithField("path", rel).Warn("Skipping tracked path")
			report.Skipped = append(report.Skipped, SkippedPath{Path: rel, Err: err})
			continue
		}
		report.Copied = append(report.Copied, rel)
	}
	return report
}
