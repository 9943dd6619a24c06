package version

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidkik/gitmover/cmd/util"
	"github.com/sidkik/gitmover/pkg/errors"
	"github.com/sidkik/gitmover/pkg/vcs"
	"github.com/sidkik/gitmover/pkg/version"
)

// Mocked for unit testing.
var (
	stdout     io.Writer  = os.Stdout
	git        vcs.Runner = vcs.Git{}
	gitVersion            = vcs.GitVersion
)

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of gitmover and git.",
		Run: func(_ *cobra.Command, args []string) {
			ctx, cancel := util.Context()
			defer cancel()

			if err := run(ctx); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func run(ctx context.Context) error {
	fmt.Fprintf(stdout, "gitmover version: %s\n", version.Version)

	gitVer, err := gitVersion(ctx, git)
	if err != nil {
		return errors.WithContext(err, "get git version")
	}

	fmt.Fprintf(stdout, "git version:      %s\n", gitVer)
	if gitVer.LessThan(vcs.MinimumGitVersion) {
		fmt.Fprintf(stdout, "git %s or newer is required.\n", vcs.MinimumGitVersion)
	}
	return nil
}
