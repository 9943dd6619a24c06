package mirror

import (
	"github.com/spf13/afero"

	"github.com/sidkik/gitmover/pkg/config"
	"github.com/sidkik/gitmover/pkg/errors"
)

// Reconcile replaces the tracked directories and files in `cfg` with the
// top-level entries of the backup directory. It doesn't recurse: a tracked
// directory is mirrored as a whole, so only its name needs to be tracked.
func Reconcile(cfg *config.Config) error {
	if err := EnsureBackupRoot(*cfg); err != nil {
		return err
	}

	entries, err := afero.ReadDir(fs, cfg.DirBackup)
	if err != nil {
		return errors.WithContext(err, "list backup directory")
	}

	dirs, files := []string{}, []string{}
	for _, entry := range entries {
		switch {
		case entry.Name() == config.MetadataDir:
			continue
		case entry.IsDir():
			dirs = append(dirs, entry.Name())
		default:
			files = append(files, entry.Name())
		}
	}

	cfg.DirsLocal = dirs
	cfg.FilesLocal = files
	return nil
}
