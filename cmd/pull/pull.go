package pull

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sidkik/gitmover/cmd/util"
	"github.com/sidkik/gitmover/pkg/errors"
	"github.com/sidkik/gitmover/pkg/vcs"
)

// Mocked for unit testing.
var (
	openBackup = util.OpenBackup
	pullBackup = vcs.Pull
)

// New creates a new `pull` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Pull the remote backup into the backup directory",
		Long: "Rebase the backup directory onto the remote. Conflicts are resolved " +
			"in favor of the remote. The home directory isn't modified, use " +
			"`gitmover get` for that.",
		Run: func(_ *cobra.Command, _ []string) {
			ctx, cancel := util.Context()
			defer cancel()

			if err := Main(ctx); err != nil {
				util.HandleFatalError(errors.WithContext(err, "pull backup"))
			}
		},
	}
}

// Main pulls the remote backup.
func Main(ctx context.Context) error {
	backup, err := openBackup(ctx)
	if err != nil {
		return errors.WithContext(err, "open backup")
	}

	_, err = pullBackup(ctx, backup.Git)
	return err
}
