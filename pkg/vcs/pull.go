package vcs

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/gitmover/pkg/errors"
)

// Pull rebases the backup repository onto the `main` branch of `origin`,
// preferring the remote's version of conflicting changes. A failed pull is
// logged rather than returned, since the local backup is still usable.
func Pull(ctx context.Context, git Runner) (Result, error) {
	res, err := git.Run(ctx, "pull", "--rebase", "origin", Branch, "--strategy-option=their")
	if err != nil {
		return Result{}, errors.WithContext(err, "pull")
	}

	logger := log.WithFields(log.Fields{
		"stdout": string(res.Stdout),
		"stderr": string(res.Stderr),
	})
	if !res.Success() {
		logger.WithField("exitCode", res.ExitCode).Warn("Failed to pull backup")
		return res, nil
	}

	logger.Info("Pulled backup")
	return res, nil
}
