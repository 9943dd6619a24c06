package vcs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sidkik/gitmover/pkg/errors"
)

func TestPull(t *testing.T) {
	pullCmd := "pull --rebase origin main --strategy-option=their"

	git := &fakeGit{}
	res, err := Pull(context.Background(), git)
	assert.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, []string{pullCmd}, git.calls)

	// Failed pulls aren't escalated.
	git = &fakeGit{results: map[string]Result{
		pullCmd: {ExitCode: 1, Stderr: []byte("fatal: couldn't find remote ref main\n")},
	}}
	res, err = Pull(context.Background(), git)
	assert.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)

	git = &fakeGit{errs: map[string]error{pullCmd: errors.New("executable not found")}}
	_, err = Pull(context.Background(), git)
	assert.Error(t, err)
}
