package diverge

import (
	"context"
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/gitmover/ci/util"
	"github.com/sidkik/gitmover/pkg/vcs"
)

// Test checks that a diverged remote is only overwritten after the operator
// confirms, and that `get` brings remote changes home.
func Test(t *testing.T, helper *util.TestHelper) {
	ctx := context.Background()
	util.WriteFiles(t, helper.Home, map[string]string{"todo.txt": "local"})

	_, err := helper.Run(ctx, "", "config", "--file", "todo.txt")
	require.NoError(t, err)

	_, err = helper.Run(ctx, "", "push")
	require.NoError(t, err)

	// Push a change to the remote from another machine.
	other := helper.Clone(t, "other-machine")
	commitAndPush(t, helper, other, "remote")

	// Stdin isn't a terminal, so gitmover declines to overwrite the remote
	// without prompting.
	util.WriteFiles(t, helper.Home, map[string]string{"todo.txt": "local change"})
	out, err := helper.Run(ctx, "y\n", "push")
	require.NoError(t, err)
	assert.Contains(t, string(out), "Push canceled")
	assert.Equal(t, "remote", util.ReadFile(helper.Clone(t, "after-cancel"), "todo.txt"))

	// Confirming overwrites the remote with the prepared backup.
	for _, env := range helper.GitEnv() {
		kv := strings.SplitN(env, "=", 2)
		require.NoError(t, os.Setenv(kv[0], kv[1]))
	}
	outcome, err := vcs.Push(ctx, vcs.Git{Dir: helper.Backup}, vcs.PushOptions{
		Stdin:  strings.NewReader("y\n"),
		Stdout: ioutil.Discard,
	})
	require.NoError(t, err)
	assert.Equal(t, vcs.PushForced, outcome)
	assert.Equal(t, "local change", util.ReadFile(helper.Clone(t, "after-force"), "todo.txt"))

	// Pulling and restoring brings the next remote change home.
	_, err = helper.Git(other, "fetch", "origin")
	require.NoError(t, err)
	_, err = helper.Git(other, "reset", "--hard", "origin/main")
	require.NoError(t, err)
	commitAndPush(t, helper, other, "remote again")

	_, err = helper.Run(ctx, "", "get")
	require.NoError(t, err)
	assert.Equal(t, "remote again", util.ReadFile(helper.Home, "todo.txt"))
}

func commitAndPush(t *testing.T, helper *util.TestHelper, repo, todo string) {
	util.WriteFiles(t, repo, map[string]string{"todo.txt": todo})
	_, err := helper.Git(repo, "commit", "-am", "change from another machine")
	require.NoError(t, err)
	_, err = helper.Git(repo, "push", "origin", "main")
	require.NoError(t, err)
}
