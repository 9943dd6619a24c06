package vcs

import (
	"context"

	log "github.com/sirupsen/logrus"
	gogit "gopkg.in/src-d/go-git.v4"

	"github.com/sidkik/gitmover/pkg/errors"
)

// Remote is the name of the only remote gitmover manages.
const Remote = "origin"

// Mocked in unit tests.
var plainOpen = gogit.PlainOpen

// EnsureRepo initializes the backup directory as a git repository if it isn't
// one already, and points `origin` at `remote` if it's set. It returns
// whether the repository was created.
func EnsureRepo(ctx context.Context, git Runner, dir, remote string) (bool, error) {
	_, err := plainOpen(dir)
	if err == nil {
		return false, nil
	}
	if err != gogit.ErrRepositoryNotExists {
		return false, errors.WithContext(err, "open repository")
	}

	log.WithField("path", dir).Info("Initializing git repository in the backup directory")
	if _, err := run(ctx, git, "init"); err != nil {
		return false, errors.WithContext(err, "init")
	}

	if _, err := run(ctx, git, "add", "."); err != nil {
		return false, errors.WithContext(err, "stage changes")
	}

	if remote != "" {
		if _, err := run(ctx, git, "remote", "add", Remote, remote); err != nil {
			return false, errors.WithContext(err, "add remote")
		}
	}
	return true, nil
}

// SetRemote points `origin` at the given URL, creating the remote if it
// doesn't exist yet.
func SetRemote(ctx context.Context, git Runner, url string) error {
	res, err := git.Run(ctx, "remote", "set-url", Remote, url)
	if err != nil {
		return errors.WithContext(err, "set remote url")
	}
	if res.Success() {
		return nil
	}

	log.WithField("stderr", string(res.Stderr)).Debug("Failed to set remote url, adding it instead")
	if _, err := run(ctx, git, "remote", "add", Remote, url); err != nil {
		return errors.WithContext(err, "add remote")
	}
	return nil
}
