package get

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sidkik/gitmover/cmd/util"
	"github.com/sidkik/gitmover/pkg/errors"
	"github.com/sidkik/gitmover/pkg/mirror"
	"github.com/sidkik/gitmover/pkg/vcs"
)

// Mocked for unit testing.
var (
	openBackup    = util.OpenBackup
	pullBackup    = vcs.Pull
	restoreBackup = mirror.Restore
)

// New creates a new `get` command.
func New() *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Restore the tracked paths from the backup",
		Long: "Pull the remote backup, and copy the tracked paths from the backup " +
			"directory into the home directory. Files in the home directory are " +
			"overwritten, but never deleted.",
		Run: func(_ *cobra.Command, _ []string) {
			ctx, cancel := util.Context()
			defer cancel()

			if err := Main(ctx, local); err != nil {
				util.HandleFatalError(errors.WithContext(err, "restore backup"))
			}
		},
	}
	cmd.Flags().BoolVar(&local, "local", false,
		"Restore from the backup directory as is, without pulling first.")
	return cmd
}

// Main restores the tracked paths, optionally pulling the remote backup
// first.
func Main(ctx context.Context, local bool) error {
	backup, err := openBackup(ctx)
	if err != nil {
		return errors.WithContext(err, "open backup")
	}

	if !local {
		if _, err := pullBackup(ctx, backup.Git); err != nil {
			return errors.WithContext(err, "pull")
		}
	}

	report, err := restoreBackup(backup.Config)
	if err != nil {
		return err
	}

	util.LogReport("Restored backup", report)
	return nil
}
