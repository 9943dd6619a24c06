package vcs

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/sidkik/gitmover/pkg/errors"
	"github.com/sidkik/gitmover/pkg/history"
)

// Branch is the only branch gitmover publishes to.
const Branch = "main"

// PushOutcome is the result of publishing the backup repository.
type PushOutcome int

const (
	// PushUpToDate means the remote accepted the push.
	PushUpToDate PushOutcome = iota

	// PushDiverged means the remote rejected the push because it has
	// commits we don't. Push never returns it: the divergence is either
	// resolved with a force push, or canceled.
	PushDiverged

	// PushForced means the remote was overwritten after the operator
	// confirmed.
	PushForced

	// PushCanceled means the operator declined to overwrite the remote.
	PushCanceled

	// PushFailed means the push failed for some other reason, such as the
	// remote being unreachable. The failure is logged but not escalated.
	PushFailed
)

func (o PushOutcome) String() string {
	switch o {
	case PushUpToDate:
		return "up-to-date"
	case PushDiverged:
		return "diverged"
	case PushForced:
		return "forced"
	case PushCanceled:
		return "canceled"
	case PushFailed:
		return "failed"
	}
	return fmt.Sprintf("PushOutcome(%d)", int(o))
}

// PushOptions controls how divergence from the remote is resolved.
type PushOptions struct {
	// Stdin is read for the answer to the overwrite prompt.
	Stdin io.Reader

	// Stdout is where the overwrite prompt is written.
	Stdout io.Writer

	// NonInteractive declines the overwrite prompt without reading Stdin.
	NonInteractive bool
}

// Mocked in unit tests.
var newCommitID = defaultCommitID

func defaultCommitID() string {
	return uuid.New().String()
}

// Push stages everything in the backup repository, commits it, and pushes it
// to the `main` branch of `origin`. If the remote has diverged, the operator
// is asked whether the remote should be overwritten.
func Push(ctx context.Context, git Runner, opts PushOptions) (PushOutcome, error) {
	if _, err := run(ctx, git, "add", "."); err != nil {
		return PushFailed, errors.WithContext(err, "stage changes")
	}

	// Fails if the branch already exists, which is expected on every push
	// but the first.
	if _, err := git.Run(ctx, "checkout", "-b", Branch); err != nil {
		return PushFailed, errors.WithContext(err, "create branch")
	}

	commitID := newCommitID()
	res, err := git.Run(ctx, "commit", "-m", commitID)
	if err != nil {
		return PushFailed, errors.WithContext(err, "commit")
	}
	switch {
	case res.Success():
	case strings.Contains(string(res.Stdout), "nothing to commit"):
		log.WithField("stdout", string(res.Stdout)).Debug("Nothing to commit")
	default:
		// The push still goes ahead so that earlier commits reach the remote.
		log.WithFields(log.Fields{
			"exitCode": res.ExitCode,
			"stderr":   string(res.Stderr),
		}).Warn("Failed to commit backup")
	}

	res, err = git.Run(ctx, "push", "origin", Branch)
	if err != nil {
		return PushFailed, errors.WithContext(err, "push")
	}

	outcome := classifyPush(res)
	switch outcome {
	case PushUpToDate:
		log.WithField("commit", commitID).Info("Pushed backup")
	case PushFailed:
		log.WithField("exitCode", res.ExitCode).
			WithField("stderr", string(res.Stderr)).
			Warn("Failed to push backup")
	case PushDiverged:
		outcome, err = resolveDivergence(ctx, git, opts)
	}

	history.Log.WithFields(log.Fields{
		"operation": "push",
		"outcome":   outcome.String(),
		"commit":    commitID,
	}).Info("Push finished")
	return outcome, err
}

// classifyPush decides whether a push succeeded, was rejected because the
// remote diverged, or failed for another reason. git doesn't report
// divergence with a distinct exit status, so a rejection is recognized by
// the hint lines git prints along with the error.
func classifyPush(res Result) PushOutcome {
	switch {
	case res.Success():
		return PushUpToDate
	case res.StderrLines() > 2:
		return PushDiverged
	default:
		return PushFailed
	}
}

func resolveDivergence(ctx context.Context, git Runner, opts PushOptions) (PushOutcome, error) {
	log.Warn("The remote backup has changes that aren't present locally")

	if opts.NonInteractive {
		log.Info("Not overwriting the remote because gitmover isn't running interactively")
		return PushCanceled, nil
	}

	confirmed, err := confirmOverwrite(opts.Stdin, opts.Stdout)
	if err != nil {
		return PushCanceled, errors.WithContext(err, "prompt")
	}

	if !confirmed {
		log.Info("Canceled the push. Run `gitmover pull` to fetch the remote changes.")
		return PushCanceled, nil
	}

	history.Log.WithField("operation", "force-push").Warn("Overwriting remote backup")
	if _, err := run(ctx, git, "push", "--force", "origin", Branch); err != nil {
		return PushFailed, errors.WithContext(err, "force push")
	}

	log.Info("Overwrote the remote backup")
	return PushForced, nil
}

func confirmOverwrite(stdin io.Reader, stdout io.Writer) (bool, error) {
	fmt.Fprint(stdout, "Do you want to overwrite the remote with your local backup? (y/N) ")

	resp, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	return isAffirmative(resp), nil
}

// isAffirmative compares the raw line, including its terminator. Anything
// other than a lone `y` or `Y` declines.
func isAffirmative(line string) bool {
	switch line {
	case "y\n", "Y\n", "y\r\n", "Y\r\n":
		return true
	}
	return false
}
