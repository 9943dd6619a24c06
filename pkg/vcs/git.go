package vcs

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/gitmover/pkg/errors"
)

// DefaultExecutable is the git binary used when Git.Executable is empty.
const DefaultExecutable = "git"

// Result is the captured outcome of a single git invocation.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success returns whether git exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// StderrLines returns the number of lines git wrote to stderr.
func (r Result) StderrLines() int {
	trimmed := strings.TrimRight(string(r.Stderr), "\n")
	if trimmed == "" {
		return 0
	}
	return strings.Count(trimmed, "\n") + 1
}

// Runner runs git subcommands against the backup repository.
type Runner interface {
	// Run returns an error only if git couldn't be started. A non-zero exit
	// status is reported through Result.ExitCode.
	Run(ctx context.Context, args ...string) (Result, error)
}

// Git runs the git executable with Dir as its working directory.
type Git struct {
	Dir        string
	Executable string
}

// Mocked in unit tests.
var runCommand = (*exec.Cmd).Run

// Run implements the Runner interface.
func (g Git) Run(ctx context.Context, args ...string) (Result, error) {
	executable := g.Executable
	if executable == "" {
		executable = DefaultExecutable
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, executable, args...)
	cmd.Dir = g.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger := log.WithField("command", strings.Join(args, " "))
	logger.Debug("Running git")

	res := Result{}
	if err := runCommand(cmd); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return Result{}, errors.WithContext(err, "run git "+strings.Join(args, " "))
		}
		res.ExitCode = exitErr.ExitCode()
	}
	res.Stdout = stdout.Bytes()
	res.Stderr = stderr.Bytes()

	logger.WithFields(log.Fields{
		"exitCode": res.ExitCode,
		"stdout":   string(res.Stdout),
		"stderr":   string(res.Stderr),
	}).Debug("Finished running git")
	return res, nil
}

// run runs git and converts a non-zero exit status into an error.
func run(ctx context.Context, git Runner, args ...string) (Result, error) {
	res, err := git.Run(ctx, args...)
	if err != nil {
		return Result{}, err
	}

	if !res.Success() {
		return res, errors.NewFriendlyError("`git %s` failed with exit status %d:\n%s",
			strings.Join(args, " "), res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}
	return res, nil
}
