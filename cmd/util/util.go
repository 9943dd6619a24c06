package util

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"

	"github.com/sidkik/gitmover/pkg/config"
	"github.com/sidkik/gitmover/pkg/errors"
	"github.com/sidkik/gitmover/pkg/history"
	"github.com/sidkik/gitmover/pkg/mirror"
	"github.com/sidkik/gitmover/pkg/vcs"
)

// Mocked for unit testing.
var (
	stderr     io.Writer = os.Stderr
	exit                 = os.Exit
	stdinFd              = os.Stdin.Fd
	isTerminal           = func(fd uintptr) bool {
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
)

// HandleFatalError prints the error and exits. Friendly errors are printed
// as is, while other errors are printed with their full context.
func HandleFatalError(err error) {
	history.Log.WithError(err).Error("Fatal error")

	if friendly, ok := errors.RootCause(err).(errors.FriendlyMessager); ok {
		fmt.Fprintln(stderr, friendly.FriendlyMessage())
	} else {
		log.WithError(err).Error("Fatal error")
	}
	exit(1)
}

// HandlePanic records the panic before crashing. It must be deferred.
func HandlePanic() {
	if r := recover(); r != nil {
		history.Log.WithFields(log.Fields{
			"panic": fmt.Sprintf("%v", r),
			"stack": string(debug.Stack()),
		}).Error("Panic")
		panic(r)
	}
}

// IsInteractive returns whether stdin is attached to a terminal.
func IsInteractive() bool {
	return isTerminal(stdinFd())
}

// Context returns a context that's canceled when the user interrupts
// gitmover with Ctrl-C.
func Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// Backup is a backup directory that's ready for version control operations.
type Backup struct {
	Config config.Config
	Git    vcs.Git
}

// Mocked for unit testing.
var (
	parseConfig = config.Parse
	ensureRepo  = vcs.EnsureRepo
	checkGit    = vcs.CheckGitVersion
)

// OpenBackup loads the config, creates the backup directory if it doesn't
// exist, and initializes it as a git repository if necessary.
func OpenBackup(ctx context.Context) (Backup, error) {
	cfg, err := parseConfig()
	if err != nil {
		return Backup{}, errors.WithContext(err, "parse config")
	}

	if err := mirror.EnsureBackupRoot(cfg); err != nil {
		if _, ok := errors.RootCause(err).(errors.MissingFieldError); ok {
			return Backup{}, errors.NewFriendlyError(
				"The backup directory isn't configured.\n" +
					"Set it with `gitmover config --backup-dir <path>`.")
		}
		return Backup{}, errors.WithContext(err, "create backup directory")
	}

	git := vcs.Git{Dir: cfg.DirBackup}
	checkGit(ctx, git)
	if _, err := ensureRepo(ctx, git, cfg.DirBackup, cfg.Remote); err != nil {
		return Backup{}, errors.WithContext(err, "initialize backup repository")
	}
	return Backup{Config: cfg, Git: git}, nil
}

// LogReport logs which tracked paths were mirrored.
func LogReport(action string, report mirror.Report) {
	for _, skipped := range report.Skipped {
		history.Log.WithError(skipped.Err).WithField("path", skipped.Path).Warn("Skipped tracked path")
	}

	log.WithFields(log.Fields{
		"copied":  len(report.Copied),
		"skipped": len(report.Skipped),
	}).Info(action)
}
