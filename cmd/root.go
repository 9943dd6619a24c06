package cmd

import (
	"os"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	configCmd "github.com/sidkik/gitmover/cmd/config"
	"github.com/sidkik/gitmover/cmd/get"
	"github.com/sidkik/gitmover/cmd/prepare"
	"github.com/sidkik/gitmover/cmd/pull"
	"github.com/sidkik/gitmover/cmd/push"
	"github.com/sidkik/gitmover/cmd/status"
	"github.com/sidkik/gitmover/cmd/util"
	"github.com/sidkik/gitmover/cmd/version"
	"github.com/sidkik/gitmover/cmd/watch"
	"github.com/sidkik/gitmover/pkg/history"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "GITMOVER_LOG_VERBOSE"

// Execute runs the main CLI process.
func Execute() {
	if os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	var verbose bool
	rootCmd := &cobra.Command{
		Use:   "gitmover",
		Short: "Back up files from your home directory to a git repository",
		Long: "gitmover copies a set of tracked files and directories from your " +
			"home directory into a backup directory, and keeps the backup " +
			"directory in sync with a remote git repository.",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
			setupHistory()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log every copied path and git command.")

	rootCmd.AddCommand(
		configCmd.New(),
		get.New(),
		prepare.New(),
		pull.New(),
		push.New(),
		status.New(),
		version.New(),
		watch.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}

func setupHistory() {
	path, err := homedir.Expand(history.Path)
	if err != nil {
		log.WithError(err).Debug("Failed to expand history path")
		return
	}

	if err := history.Enable(path); err != nil {
		log.WithError(err).Debug("Failed to enable history")
		return
	}
	log.AddHook(history.NewLogHook(path))
}
