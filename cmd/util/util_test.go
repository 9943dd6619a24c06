package util

import (
	"bytes"
	"context"
	"testing"

	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/gitmover/pkg/config"
	"github.com/sidkik/gitmover/pkg/errors"
	"github.com/sidkik/gitmover/pkg/vcs"
)

func TestHandleFatalError(t *testing.T) {
	var exitCode int
	exit = func(code int) { exitCode = code }

	tests := []struct {
		name      string
		err       error
		expStderr string
		expLogged bool
	}{
		{
			name:      "Friendly",
			err:       errors.WithContext(errors.NewFriendlyError("Set the %s.", "backup dir"), "open backup"),
			expStderr: "Set the backup dir.\n",
		},
		{
			name:      "CustomFriendly",
			err:       errors.WithContext(outdatedConfigError{}, "parse config"),
			expStderr: "The config file is outdated.\n",
		},
		{
			name:      "Unfriendly",
			err:       errors.WithContext(errors.New("permission denied"), "write config"),
			expLogged: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			hook := logrusTest.NewGlobal()
			defer hook.Reset()

			var out bytes.Buffer
			stderr = &out
			exitCode = 0

			HandleFatalError(test.err)
			assert.Equal(t, 1, exitCode)
			assert.Equal(t, test.expStderr, out.String())
			if test.expLogged {
				require.NotNil(t, hook.LastEntry())
				assert.Equal(t, test.err, hook.LastEntry().Data["error"])
			} else {
				assert.Nil(t, hook.LastEntry())
			}
		})
	}
}

type outdatedConfigError struct{}

func (outdatedConfigError) Error() string {
	return "outdated config"
}

func (outdatedConfigError) FriendlyMessage() string {
	return "The config file is outdated."
}

func TestHandlePanic(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		defer HandlePanic()
		panic("boom")
	})
}

func TestIsInteractive(t *testing.T) {
	stdinFd = func() uintptr { return 42 }
	isTerminal = func(fd uintptr) bool { return fd == 42 }
	assert.True(t, IsInteractive())

	isTerminal = func(uintptr) bool { return false }
	assert.False(t, IsInteractive())
}

func TestOpenBackup(t *testing.T) {
	cfg := config.Config{
		Remote:    "git@github.com:u/backup.git",
		HomeDir:   "/home/u",
		DirBackup: t.TempDir(),
	}
	parseConfig = func() (config.Config, error) { return cfg, nil }
	checkGit = func(context.Context, vcs.Runner) {}

	var ensuredDir, ensuredRemote string
	ensureRepo = func(_ context.Context, _ vcs.Runner, dir, remote string) (bool, error) {
		ensuredDir, ensuredRemote = dir, remote
		return true, nil
	}

	backup, err := OpenBackup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg, backup.Config)
	assert.Equal(t, vcs.Git{Dir: cfg.DirBackup}, backup.Git)
	assert.Equal(t, cfg.DirBackup, ensuredDir)
	assert.Equal(t, cfg.Remote, ensuredRemote)
}

func TestOpenBackupUnconfigured(t *testing.T) {
	parseConfig = func() (config.Config, error) {
		return config.Config{HomeDir: "/home/u"}, nil
	}

	_, err := OpenBackup(context.Background())
	assert.Contains(t, errors.GetPrintableMessage(err), "gitmover config --backup-dir")
}

