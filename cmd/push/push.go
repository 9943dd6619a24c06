package push

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidkik/gitmover/cmd/util"
	"github.com/sidkik/gitmover/pkg/errors"
	"github.com/sidkik/gitmover/pkg/mirror"
	"github.com/sidkik/gitmover/pkg/vcs"
)

// Mocked for unit testing.
var (
	stdin         io.Reader = os.Stdin
	stdout        io.Writer = os.Stdout
	openBackup              = util.OpenBackup
	prepareBackup           = mirror.Prepare
	pushBackup              = vcs.Push
	isInteractive           = util.IsInteractive
)

// New creates a new `push` command.
func New() *cobra.Command {
	var nonInteractive bool
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Back up the tracked paths and push them to the remote",
		Long: "Copy the tracked paths into the backup directory, commit them, and " +
			"push the commit to the remote.\n\n" +
			"If the remote has changes that aren't present locally, gitmover asks " +
			"whether the remote should be overwritten.",
		Run: func(_ *cobra.Command, _ []string) {
			ctx, cancel := util.Context()
			defer cancel()

			if err := Main(ctx, nonInteractive); err != nil {
				util.HandleFatalError(errors.WithContext(err, "push backup"))
			}
		},
	}
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false,
		"Never overwrite the remote. Implied when stdin isn't a terminal.")
	return cmd
}

// Main prepares the backup and pushes it.
func Main(ctx context.Context, nonInteractive bool) error {
	backup, err := openBackup(ctx)
	if err != nil {
		return errors.WithContext(err, "open backup")
	}

	outcome, err := Run(ctx, backup, vcs.PushOptions{
		Stdin:          stdin,
		Stdout:         stdout,
		NonInteractive: nonInteractive || !isInteractive(),
	})
	if err != nil {
		return err
	}

	if outcome == vcs.PushCanceled {
		fmt.Fprintln(stdout, "Push canceled. The remote was left untouched.")
	}
	return nil
}

// Run copies the tracked paths into the backup directory, and publishes them.
func Run(ctx context.Context, backup util.Backup, opts vcs.PushOptions) (vcs.PushOutcome, error) {
	report, err := prepareBackup(backup.Config)
	if err != nil {
		return vcs.PushFailed, errors.WithContext(err, "prepare")
	}
	util.LogReport("Prepared backup", report)

	return pushBackup(ctx, backup.Git, opts)
}
