package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/gitmover/ci/util"
)

// Test checks that tracked paths are pushed to the remote, and that later
// changes replace them.
func Test(t *testing.T, helper *util.TestHelper) {
	ctx := context.Background()
	util.WriteFiles(t, helper.Home, map[string]string{
		"notes/monday.md":       "monday",
		"notes/archive/2019.md": "2019",
		".bashrc":               "alias ll='ls -l'",
		"untracked.txt":         "untracked",
	})

	_, err := helper.Run(ctx, "", "config", "--dir", "notes", "--file", ".bashrc")
	require.NoError(t, err)

	_, err = helper.Run(ctx, "", "push")
	require.NoError(t, err)

	clone := helper.Clone(t, "first-clone")
	assert.Equal(t, "monday", util.ReadFile(clone, "notes/monday.md"))
	assert.Equal(t, "2019", util.ReadFile(clone, "notes/archive/2019.md"))
	assert.Equal(t, "alias ll='ls -l'", util.ReadFile(clone, ".bashrc"))
	assert.Equal(t, "", util.ReadFile(clone, "untracked.txt"))

	// Files deleted from the home directory are deleted from the backup.
	require.NoError(t, os.Remove(filepath.Join(helper.Home, "notes/monday.md")))
	util.WriteFiles(t, helper.Home, map[string]string{".bashrc": "alias la='ls -a'"})

	_, err = helper.Run(ctx, "", "push")
	require.NoError(t, err)

	clone = helper.Clone(t, "second-clone")
	assert.Equal(t, "", util.ReadFile(clone, "notes/monday.md"))
	assert.Equal(t, "alias la='ls -a'", util.ReadFile(clone, ".bashrc"))

	// The backup's git metadata survives every push.
	_, err = os.Stat(filepath.Join(helper.Backup, ".git", "HEAD"))
	assert.NoError(t, err)
}
