package status

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidkik/gitmover/cmd/util"
	"github.com/sidkik/gitmover/pkg/errors"
	"github.com/sidkik/gitmover/pkg/vcs"
)

// Mocked for unit testing.
var (
	stdout       io.Writer = os.Stdout
	openBackup             = util.OpenBackup
	backupStatus           = vcs.Status
)

// New creates a new `status` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of the backup repository",
		Run: func(_ *cobra.Command, _ []string) {
			ctx, cancel := util.Context()
			defer cancel()

			if err := Main(ctx); err != nil {
				util.HandleFatalError(errors.WithContext(err, "get status"))
			}
		},
	}
}

// Main prints the state of the backup repository.
func Main(ctx context.Context) error {
	backup, err := openBackup(ctx)
	if err != nil {
		return errors.WithContext(err, "open backup")
	}

	report, err := backupStatus(backup.Config.DirBackup)
	if err != nil {
		return errors.WithContext(err, "inspect repository")
	}

	cfg := backup.Config
	fmt.Fprintf(stdout, "Backup directory: %s\n", cfg.DirBackup)
	fmt.Fprintf(stdout, "Remote:           %s\n", orNone(report.OriginURL))
	fmt.Fprintf(stdout, "Branch:           %s\n", orNone(report.Branch))
	fmt.Fprintf(stdout, "Tracked:          %d directories, %d files\n",
		len(cfg.DirsLocal), len(cfg.FilesLocal))

	if report.Clean() {
		fmt.Fprintln(stdout, "\nNothing to commit.")
		return nil
	}

	fmt.Fprintln(stdout, "\nChanges:")
	for _, change := range report.Changes {
		fmt.Fprintf(stdout, "\t%s%s %s\n", change.Staging, change.Worktree, change.Path)
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
