package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sidkik/gitmover/pkg/errors"
)

func TestAddTrackedPaths(t *testing.T) {
	var cfg Config
	assert.True(t, cfg.AddDir("notes/"))
	assert.False(t, cfg.AddDir("notes"), "duplicates shouldn't accumulate")
	assert.True(t, cfg.AddDir(".config/nvim"))
	assert.True(t, cfg.AddFile("todo.txt"))
	assert.False(t, cfg.AddFile("./todo.txt"))

	assert.Equal(t, []string{"notes", ".config/nvim"}, cfg.DirsLocal)
	assert.Equal(t, []string{"todo.txt"}, cfg.FilesLocal)
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		expRemoved bool
		expDirs    []string
		expFiles   []string
	}{
		{
			name:       "Directory",
			path:       "notes/",
			expRemoved: true,
			expDirs:    []string{"music"},
			expFiles:   []string{"notes", "todo.txt"},
		},
		{
			name:       "File",
			path:       "todo.txt",
			expRemoved: true,
			expDirs:    []string{"notes", "music"},
			expFiles:   []string{"notes"},
		},
		{
			// Without a trailing slash, the path refers to a file even if a
			// directory with the same name is tracked.
			name:       "FileShadowingDirectory",
			path:       "notes",
			expRemoved: true,
			expDirs:    []string{"notes", "music"},
			expFiles:   []string{"todo.txt"},
		},
		{
			name:       "Untracked",
			path:       "missing/",
			expRemoved: false,
			expDirs:    []string{"notes", "music"},
			expFiles:   []string{"notes", "todo.txt"},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			cfg := Config{
				DirsLocal:  []string{"notes", "music"},
				FilesLocal: []string{"notes", "todo.txt"},
			}
			assert.Equal(t, test.expRemoved, cfg.Remove(test.path))
			assert.Equal(t, test.expDirs, cfg.DirsLocal)
			assert.Equal(t, test.expFiles, cfg.FilesLocal)
		})
	}
}

func TestResolve(t *testing.T) {
	cfg := Config{HomeDir: "/home/u", DirBackup: "/home/u/.backup"}
	assert.Equal(t, "/home/u/notes", cfg.HomePath("notes"))
	assert.Equal(t, "/home/u/.backup/notes", cfg.BackupPath("notes"))
}

func TestValidate(t *testing.T) {
	valid := Config{
		DirsLocal:  []string{"notes"},
		FilesLocal: []string{"todo.txt"},
		HomeDir:    "/home/u",
		DirBackup:  "/home/u/.backup",
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		expErr error
	}{
		{
			name:   "Valid",
			mutate: func(*Config) {},
		},
		{
			name:   "MissingBackupDir",
			mutate: func(c *Config) { c.DirBackup = "" },
			expErr: errors.MissingFieldError{Field: "dir_backup"},
		},
		{
			name:   "MissingHomeDir",
			mutate: func(c *Config) { c.HomeDir = "" },
			expErr: errors.MissingFieldError{Field: "home_dir"},
		},
		{
			name:   "AbsolutePath",
			mutate: func(c *Config) { c.FilesLocal = []string{"/etc/passwd"} },
			expErr: errors.InvalidPathError{Path: "/etc/passwd", Reason: "must be relative"},
		},
		{
			name:   "EscapingPath",
			mutate: func(c *Config) { c.DirsLocal = []string{"notes/../../x"} },
			expErr: errors.InvalidPathError{Path: "notes/../../x", Reason: "escapes the root"},
		},
		{
			name:   "MetadataDir",
			mutate: func(c *Config) { c.DirsLocal = []string{".git/"} },
			expErr: errors.InvalidPathError{Path: ".git/", Reason: "is reserved for git metadata"},
		},
		{
			name:   "Root",
			mutate: func(c *Config) { c.DirsLocal = []string{"."} },
			expErr: errors.InvalidPathError{Path: ".", Reason: "refers to the whole root"},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			cfg := valid
			test.mutate(&cfg)
			assert.Equal(t, test.expErr, cfg.Validate())
		})
	}
}

func TestWithin(t *testing.T) {
	tests := []struct {
		path, root string
		exp        bool
	}{
		{"/home/u/.backup", "/home/u/.backup", true},
		{"/home/u/.backup/notes", "/home/u/.backup", true},
		{"/home/u/.backup/", "/home/u/.backup", true},
		{"/home/u/.backups", "/home/u/.backup", false},
		{"/home/u", "/home/u/.backup", false},
		{"/home/u/..backup", "/home/u", true},
		{"/etc", "/home/u", false},
	}

	for _, test := range tests {
		assert.Equal(t, test.exp, Within(test.path, test.root), "%s in %s", test.path, test.root)
	}
}
