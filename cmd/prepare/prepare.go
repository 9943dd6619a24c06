package prepare

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sidkik/gitmover/cmd/util"
	"github.com/sidkik/gitmover/pkg/errors"
	"github.com/sidkik/gitmover/pkg/mirror"
)

// Mocked for unit testing.
var (
	openBackup    = util.OpenBackup
	prepareBackup = mirror.Prepare
)

// New creates a new `prepare` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Copy the tracked paths into the backup directory",
		Long: "Replace the contents of the backup directory with fresh copies of " +
			"the tracked paths, without committing or pushing them.",
		Run: func(_ *cobra.Command, _ []string) {
			ctx, cancel := util.Context()
			defer cancel()

			if err := Main(ctx); err != nil {
				util.HandleFatalError(errors.WithContext(err, "prepare backup"))
			}
		},
	}
}

// Main copies the tracked paths into the backup directory.
func Main(ctx context.Context) error {
	backup, err := openBackup(ctx)
	if err != nil {
		return errors.WithContext(err, "open backup")
	}

	report, err := prepareBackup(backup.Config)
	if err != nil {
		return err
	}

	util.LogReport("Prepared backup", report)
	return nil
}
