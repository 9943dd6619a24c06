package util

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/gitmover/pkg/errors"
)

// TestHelper contains methods commonly used during integration tests. Each
// helper has its own home directory and bare remote repository.
type TestHelper struct {
	// Home is used as both $HOME and the gitmover home directory.
	Home string

	// Backup is the gitmover backup directory.
	Backup string

	// Remote is the path to a bare repository used as `origin`.
	Remote string

	root string
}

// NewTestHelper creates a home directory and an empty remote repository,
// and configures gitmover to use them.
func NewTestHelper(t *testing.T) *TestHelper {
	root, err := ioutil.TempDir("", "gitmover-ci")
	require.NoError(t, err)

	helper := &TestHelper{
		Home:   filepath.Join(root, "home"),
		Backup: filepath.Join(root, "home", ".backup"),
		Remote: filepath.Join(root, "remote.git"),
		root:   root,
	}
	require.NoError(t, os.MkdirAll(helper.Home, 0755))

	_, err = helper.Git(root, "init", "--bare", helper.Remote)
	require.NoError(t, err)

	_, err = helper.Run(context.Background(), "",
		"config", "--home-dir", helper.Home,
		"--backup-dir", helper.Backup,
		"--remote", helper.Remote)
	require.NoError(t, err)
	return helper
}

// Cleanup removes everything created by the helper.
func (helper *TestHelper) Cleanup() {
	if err := os.RemoveAll(helper.root); err != nil {
		log.WithError(err).Warn("Failed to cleanup test directory")
	}
}

// GitEnv returns the environment variables that let git commit without any
// global git config.
func (helper *TestHelper) GitEnv() []string {
	return []string{
		"GIT_AUTHOR_NAME=gitmover-ci",
		"GIT_AUTHOR_EMAIL=ci@gitmover.invalid",
		"GIT_COMMITTER_NAME=gitmover-ci",
		"GIT_COMMITTER_EMAIL=ci@gitmover.invalid",
	}
}

func (helper *TestHelper) env() []string {
	env := append(os.Environ(), "HOME="+helper.Home)
	return append(env, helper.GitEnv()...)
}

// Run runs the given gitmover command with `stdin` as its input, and
// returns its stdout.
func (helper *TestHelper) Run(ctx context.Context, stdin string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "gitmover", args...)
	cmd.Env = helper.env()
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("gitmover %s (%s): stderr: %s",
			strings.Join(args, " "), err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Git runs git in `dir`, and returns its combined output.
func (helper *TestHelper) Git(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = helper.env()

	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, errors.WithContext(fmt.Errorf("%s: %s", err, out),
			"git "+strings.Join(args, " "))
	}
	return out, nil
}

// Clone clones the remote into a new directory, and returns its path.
func (helper *TestHelper) Clone(t *testing.T, name string) string {
	dir := filepath.Join(helper.root, name)
	_, err := helper.Git(helper.root, "clone", "--branch", "main", helper.Remote, dir)
	require.NoError(t, err)
	return dir
}

// WriteFiles writes the given files, creating parent directories as needed.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	for path, contents := range files {
		path = filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))
	}
}

// ReadFile returns the contents of the file, or the empty string if it
// can't be read.
func ReadFile(root, path string) string {
	contents, err := ioutil.ReadFile(filepath.Join(root, path))
	if err != nil {
		return ""
	}
	return string(contents)
}
