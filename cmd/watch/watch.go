package watch

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	pushCmd "github.com/sidkik/gitmover/cmd/push"
	"github.com/sidkik/gitmover/cmd/util"
	"github.com/sidkik/gitmover/pkg/errors"
	"github.com/sidkik/gitmover/pkg/fswatch"
	"github.com/sidkik/gitmover/pkg/history"
	"github.com/sidkik/gitmover/pkg/vcs"
)

// DefaultInterval is how long the tracked paths must go without changes
// before they're backed up.
const DefaultInterval = 30 * time.Second

// Mocked for unit testing.
var (
	openBackup = util.OpenBackup
	pushBackup = pushCmd.Run
	clock      = clockwork.NewRealClock()
	expandHome = homedir.Expand
)

// New creates a new `watch` command.
func New() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Back up the tracked paths whenever they change",
		Long: "Watch the tracked paths, and push a new backup once they stop " +
			"changing. If the remote has diverged, it's left untouched.",
		Run: func(_ *cobra.Command, _ []string) {
			ctx, cancel := util.Context()
			defer cancel()

			if err := Main(ctx, interval); err != nil {
				util.HandleFatalError(errors.WithContext(err, "watch"))
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", DefaultInterval,
		"How long to wait after the last change before backing up.")
	return cmd
}

// Main backs up the tracked paths, and then again after every change, until
// `ctx` is canceled.
func Main(ctx context.Context, interval time.Duration) error {
	backup, err := openBackup(ctx)
	if err != nil {
		return errors.WithContext(err, "open backup")
	}

	watcher, err := fswatch.Watch(backup.Config, ignoredPaths()...)
	if err != nil {
		return errors.WithContext(err, "watch tracked paths")
	}
	defer watcher.Close()

	runBackup := func(ctx context.Context) {
		outcome, err := pushBackup(ctx, backup, vcs.PushOptions{NonInteractive: true})
		if err != nil {
			log.WithError(err).Warn("Failed to back up")
			return
		}
		log.WithField("outcome", outcome.String()).Debug("Finished backup")
	}

	runBackup(ctx)
	log.WithField("interval", interval).Info("Watching tracked paths for changes")
	watchLoop(ctx, watcher.Events, interval, runBackup)
	return nil
}

// ignoredPaths returns the files that gitmover writes to on its own while
// watching. The backup directory is always ignored by fswatch.
func ignoredPaths() []string {
	path, err := expandHome(history.Path)
	if err != nil {
		log.WithError(err).Debug("Failed to expand history path")
		return nil
	}
	return []string{path}
}

// watchLoop calls `backup` once there have been no new events for
// `interval`.
func watchLoop(ctx context.Context, events <-chan struct{}, interval time.Duration,
	backup func(context.Context)) {
	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-events:
			log.Debug("Tracked paths changed")
			timer = clock.After(interval)
		case <-timer:
			timer = nil
			backup(ctx)
		}
	}
}
