package vcs

import (
	"context"
	"strings"
)

// fakeGit records the git commands it's asked to run. Commands without a
// configured result exit successfully with no output.
type fakeGit struct {
	results map[string]Result
	errs    map[string]error
	calls   []string
}

func (git *fakeGit) Run(_ context.Context, args ...string) (Result, error) {
	cmd := strings.Join(args, " ")
	git.calls = append(git.calls, cmd)
	if err, ok := git.errs[cmd]; ok {
		return Result{}, err
	}
	return git.results[cmd], nil
}
