package mirror

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/gitmover/pkg/config"
	"github.com/sidkik/gitmover/pkg/errors"
)

var testConfig = config.Config{
	DirsLocal:  []string{"notes"},
	FilesLocal: []string{"todo.txt"},
	HomeDir:    "/home/u",
	DirBackup:  "/home/u/.backup",
}

func setupHome(t *testing.T) {
	fs = afero.NewMemMapFs()
	writeFiles(t, map[string]string{
		"/home/u/notes/monday.md":         "monday",
		"/home/u/notes/archive/2019.md":   "2019",
		"/home/u/todo.txt":                "buy milk",
		"/home/u/untracked.txt":           "untracked",
		"/home/u/.backup/.git/HEAD":       "ref: refs/heads/main",
		"/home/u/.backup/.git/config":     "[core]",
		"/home/u/.backup/stale.txt":       "removed from the config",
		"/home/u/.backup/notes/gone.md":   "deleted from home",
		"/home/u/.backup/notes/monday.md": "old monday",
	})
}

func TestPrepare(t *testing.T) {
	setupHome(t)

	report, err := Prepare(testConfig)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes", "todo.txt"}, report.Copied)
	assert.Empty(t, report.Skipped)

	assertFile(t, "/home/u/.backup/notes/monday.md", "monday")
	assertFile(t, "/home/u/.backup/notes/archive/2019.md", "2019")
	assertFile(t, "/home/u/.backup/todo.txt", "buy milk")

	// The metadata directory is untouched.
	assertFile(t, "/home/u/.backup/.git/HEAD", "ref: refs/heads/main")
	assertFile(t, "/home/u/.backup/.git/config", "[core]")

	// Everything else in the backup was cleared before copying.
	for _, path := range []string{
		"/home/u/.backup/stale.txt",
		"/home/u/.backup/notes/gone.md",
		"/home/u/.backup/untracked.txt",
	} {
		exists, err := afero.Exists(fs, path)
		assert.NoError(t, err)
		assert.False(t, exists, path)
	}
}

func TestPrepareRepeatedlyKeepsMetadata(t *testing.T) {
	setupHome(t)

	for i := 0; i < 3; i++ {
		_, err := Prepare(testConfig)
		require.NoError(t, err)
		assertFile(t, "/home/u/.backup/.git/HEAD", "ref: refs/heads/main")
	}
}

func TestPrepareBackupInsideTrackedDir(t *testing.T) {
	fs = afero.NewMemMapFs()
	writeFiles(t, map[string]string{
		"/home/u/.config/app.conf":                    "theme = dark",
		"/home/u/.config/gitmover/config.yaml":        "home_dir: /home/u",
		"/home/u/.config/gitmover/backup/.git/HEAD":   "ref: refs/heads/main",
		"/home/u/.config/gitmover/backup/old/stale.x": "stale",
	})

	cfg := config.Config{
		DirsLocal: []string{".config"},
		HomeDir:   "/home/u",
		DirBackup: "/home/u/.config/gitmover/backup",
	}

	for i := 0; i < 2; i++ {
		report, err := Prepare(cfg)
		require.NoError(t, err)
		assert.Equal(t, []string{".config"}, report.Copied)
		assert.Empty(t, report.Skipped)
	}

	backup := "/home/u/.config/gitmover/backup"
	assertFile(t, backup+"/.config/app.conf", "theme = dark")
	assertFile(t, backup+"/.config/gitmover/config.yaml", "home_dir: /home/u")
	assertFile(t, backup+"/.git/HEAD", "ref: refs/heads/main")

	for _, path := range []string{
		backup + "/.config/gitmover/backup",
		backup + "/old",
	} {
		exists, err := afero.Exists(fs, path)
		assert.NoError(t, err)
		assert.False(t, exists, path)
	}

	// Restoring doesn't skip anything, even though every backed up path is
	// under a tracked directory.
	require.NoError(t, afero.WriteFile(fs, "/home/u/.config/app.conf", []byte("changed"), 0644))
	_, err := Restore(cfg)
	require.NoError(t, err)
	assertFile(t, "/home/u/.config/app.conf", "theme = dark")
}

func TestPrepareCreatesBackupRoot(t *testing.T) {
	fs = afero.NewMemMapFs()
	writeFiles(t, map[string]string{"/home/u/todo.txt": "buy milk"})

	cfg := testConfig
	cfg.DirBackup = "/mnt/backup"
	_, err := Prepare(cfg)
	require.NoError(t, err)
	assertFile(t, "/mnt/backup/todo.txt", "buy milk")
}

func TestPrepareMissingSource(t *testing.T) {
	setupHome(t)

	cfg := testConfig
	cfg.DirsLocal = []string{"deleted", "notes"}
	cfg.FilesLocal = []string{"gone.txt", "todo.txt"}

	report, err := Prepare(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes", "todo.txt"}, report.Copied)
	assert.Equal(t, []SkippedPath{
		{Path: "deleted", Err: errors.FileNotFound{Path: "/home/u/deleted"}},
		{Path: "gone.txt", Err: errors.FileNotFound{Path: "/home/u/gone.txt"}},
	}, report.Skipped)

	assertFile(t, "/home/u/.backup/notes/monday.md", "monday")
	assertFile(t, "/home/u/.backup/todo.txt", "buy milk")
}

func TestPrepareInvalidConfig(t *testing.T) {
	setupHome(t)

	cfg := testConfig
	cfg.DirBackup = ""
	_, err := Prepare(cfg)
	assert.Equal(t, errors.WithContext(
		errors.MissingFieldError{Field: "dir_backup"}, "validate config"), err)
}

// unlistableFs fails to open a single directory.
type unlistableFs struct {
	afero.Fs
	path string
}

func (fs unlistableFs) Open(name string) (afero.File, error) {
	if name == fs.path {
		return nil, errors.New("permission denied")
	}
	return fs.Fs.Open(name)
}

func TestPrepareListErrorIsFatal(t *testing.T) {
	setupHome(t)
	fs = unlistableFs{Fs: fs, path: testConfig.DirBackup}

	_, err := Prepare(testConfig)
	assert.Error(t, err)

	// Nothing was cleared or copied.
	assertFile(t, "/home/u/.backup/stale.txt", "removed from the config")
	exists, err := afero.Exists(fs, "/home/u/.backup/todo.txt")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestRestore(t *testing.T) {
	fs = afero.NewMemMapFs()
	writeFiles(t, map[string]string{
		"/home/u/.backup/notes/monday.md": "monday from backup",
		"/home/u/.backup/todo.txt":        "todo from backup",
		"/home/u/notes/local-only.md":     "local",
		"/home/u/notes/monday.md":         "local monday",
	})

	report, err := Restore(testConfig)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes", "todo.txt"}, report.Copied)

	assertFile(t, "/home/u/notes/monday.md", "monday from backup")
	assertFile(t, "/home/u/todo.txt", "todo from backup")

	// The home directory is never cleared.
	assertFile(t, "/home/u/notes/local-only.md", "local")
}

func TestPrepareRestoreRoundTrip(t *testing.T) {
	setupHome(t)
	original := snapshot(t, "/home/u/notes", "/home/u/todo.txt")

	_, err := Prepare(testConfig)
	require.NoError(t, err)

	// Lose the tracked files in the home directory.
	require.NoError(t, fs.RemoveAll("/home/u/notes"))
	require.NoError(t, fs.Remove("/home/u/todo.txt"))

	_, err = Restore(testConfig)
	require.NoError(t, err)
	assert.Equal(t, original, snapshot(t, "/home/u/notes", "/home/u/todo.txt"))
}

// snapshot returns the contents of every file under the given roots.
func snapshot(t *testing.T, roots ...string) map[string]string {
	files := map[string]string{}
	for _, root := range roots {
		err := afero.Walk(fs, root, func(path string, fi os.FileInfo, err error) error {
			if err != nil || fi.IsDir() {
				return err
			}
			contents, err := afero.ReadFile(fs, path)
			files[path] = string(contents)
			return err
		})
		require.NoError(t, err)
	}
	return files
}
