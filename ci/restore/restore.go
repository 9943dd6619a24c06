package restore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/gitmover/ci/util"
)

// Test checks that `get --local` restores tracked paths from the backup
// directory without touching untracked files.
func Test(t *testing.T, helper *util.TestHelper) {
	ctx := context.Background()
	util.WriteFiles(t, helper.Home, map[string]string{
		"notes/monday.md": "monday",
		"todo.txt":        "buy milk",
	})

	_, err := helper.Run(ctx, "", "config", "--dir", "notes", "--file", "todo.txt")
	require.NoError(t, err)

	_, err = helper.Run(ctx, "", "prepare")
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(helper.Home, "notes")))
	util.WriteFiles(t, helper.Home, map[string]string{
		"todo.txt":            "overwritten",
		"notes/local-only.md": "local",
	})

	_, err = helper.Run(ctx, "", "get", "--local")
	require.NoError(t, err)
	assert.Equal(t, "monday", util.ReadFile(helper.Home, "notes/monday.md"))
	assert.Equal(t, "buy milk", util.ReadFile(helper.Home, "todo.txt"))
	assert.Equal(t, "local", util.ReadFile(helper.Home, "notes/local-only.md"))

	// Syncing the config tracks exactly what's in the backup.
	_, err = helper.Run(ctx, "", "config", "--del", "todo.txt")
	require.NoError(t, err)
	_, err = helper.Run(ctx, "", "config", "sync")
	require.NoError(t, err)

	out, err := helper.Run(ctx, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, string(out), "- todo.txt")
	assert.NotContains(t, string(out), "- .git")
}
