package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/gitmover/cmd/util"
	"github.com/sidkik/gitmover/pkg/config"
	"github.com/sidkik/gitmover/pkg/errors"
	"github.com/sidkik/gitmover/pkg/mirror"
	"github.com/sidkik/gitmover/pkg/vcs"
)

// Mocked for unit testing.
var (
	stdout      io.Writer = os.Stdout
	parseConfig           = config.Parse
	writeConfig           = config.Write
	openBackup            = util.OpenBackup
	setRemote             = vcs.SetRemote
	reconcile             = mirror.Reconcile
)

// Options are the changes requested on the command line.
type Options struct {
	Remote    string
	Dirs      []string
	Files     []string
	Deletes   []string
	HomeDir   string
	BackupDir string
}

// New creates a new `config` command.
func New() *cobra.Command {
	var opts Options
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Change what gets backed up, and where",
		Long: "Change the gitmover configuration. Without any flags, the " +
			"configuration is left untouched.",
		Run: func(_ *cobra.Command, _ []string) {
			ctx, cancel := util.Context()
			defer cancel()

			if err := Main(ctx, opts); err != nil {
				err = errors.WithContext(err, "update config")
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVar(&opts.Remote, "remote", "",
		"Set the URL of the remote repository that backups are pushed to.")
	cmd.Flags().StringArrayVar(&opts.Dirs, "dir", nil,
		"Track a directory, relative to the home directory. Can be repeated.")
	cmd.Flags().StringArrayVar(&opts.Files, "file", nil,
		"Track a file, relative to the home directory. Can be repeated.")
	cmd.Flags().StringArrayVar(&opts.Deletes, "del", nil,
		"Stop tracking a path. Paths ending with `/` refer to directories, "+
			"and all others refer to files. Can be repeated.")
	cmd.Flags().StringVar(&opts.HomeDir, "home-dir", "",
		"Set the directory that tracked paths are relative to.")
	cmd.Flags().StringVar(&opts.BackupDir, "backup-dir", "",
		"Set the directory that tracked paths are copied to. "+
			"It's managed as a git repository.")

	cmd.AddCommand(newShowCommand(), newSyncCommand())

	// Setup the commands for querying the contents of the config.
	type getterSpec struct {
		use, short string
		fn         func(config.Config) string
	}

	getters := []getterSpec{
		{
			use:   "get-remote",
			short: "Get the URL of the remote repository",
			fn:    func(cfg config.Config) string { return cfg.Remote },
		},
		{
			use:   "get-home-dir",
			short: "Get the directory that tracked paths are relative to",
			fn:    func(cfg config.Config) string { return cfg.HomeDir },
		},
		{
			use:   "get-backup-dir",
			short: "Get the directory that tracked paths are copied to",
			fn:    func(cfg config.Config) string { return cfg.DirBackup },
		},
	}
	for _, getter := range getters {
		getter := getter
		cmd.AddCommand(&cobra.Command{
			Use:   getter.use,
			Short: getter.short,
			Run: func(_ *cobra.Command, _ []string) {
				cfg, err := parseConfig()
				if err != nil {
					err = errors.WithContext(err, "read config")
					util.HandleFatalError(err)
				}

				fmt.Fprintln(stdout, getter.fn(cfg))
			},
		})
	}

	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the configuration",
		Run: func(_ *cobra.Command, _ []string) {
			cfg, err := parseConfig()
			if err != nil {
				util.HandleFatalError(errors.WithContext(err, "read config"))
			}

			yamlBytes, err := config.Marshal(cfg)
			if err != nil {
				util.HandleFatalError(errors.WithContext(err, "marshal config"))
			}
			fmt.Fprint(stdout, string(yamlBytes))
		},
	}
}

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Track exactly the top-level entries of the backup directory",
		Long: "Replace the tracked directories and files with whatever is at the " +
			"top level of the backup directory, for example after pulling a " +
			"backup made on another machine.",
		Run: func(_ *cobra.Command, _ []string) {
			if err := Sync(); err != nil {
				util.HandleFatalError(errors.WithContext(err, "sync config"))
			}
		},
	}
}

// Main applies the options to the config and writes it back to disk.
func Main(ctx context.Context, opts Options) error {
	cfg, err := parseConfig()
	if err != nil {
		return errors.WithContext(err, "read config")
	}

	if err := Apply(&cfg, opts); err != nil {
		return err
	}

	if err := writeConfig(cfg); err != nil {
		return errors.WithContext(err, "write config")
	}
	log.Debug("Wrote config")

	if opts.Remote == "" {
		return nil
	}

	if cfg.DirBackup == "" {
		log.Info("The remote will be added once the backup directory is configured")
		return nil
	}

	backup, err := openBackup(ctx)
	if err != nil {
		return errors.WithContext(err, "open backup")
	}

	if err := setRemote(ctx, backup.Git, opts.Remote); err != nil {
		return errors.WithContext(err, "set remote")
	}
	return nil
}

// Apply applies the options to `cfg` in the same order as they're listed in
// Options.
func Apply(cfg *config.Config, opts Options) error {
	if opts.Remote != "" {
		cfg.Remote = opts.Remote
	}

	for _, dir := range opts.Dirs {
		if !cfg.AddDir(dir) {
			log.WithField("path", dir).Info("Directory is already tracked")
		}
	}

	for _, file := range opts.Files {
		if !cfg.AddFile(file) {
			log.WithField("path", file).Info("File is already tracked")
		}
	}

	for _, path := range opts.Deletes {
		if !cfg.Remove(path) {
			log.WithField("path", path).Warn("Path isn't tracked")
		}
	}

	if opts.HomeDir != "" {
		dir, err := absDir(opts.HomeDir)
		if err != nil {
			return errors.WithContext(err, "home directory")
		}
		cfg.HomeDir = dir
	}

	if opts.BackupDir != "" {
		dir, err := absDir(opts.BackupDir)
		if err != nil {
			return errors.WithContext(err, "backup directory")
		}
		cfg.DirBackup = dir
	}

	// A config that's missing its directories is still written so that they
	// can be set later.
	if err := cfg.ValidateTracked(); err != nil {
		return errors.NewFriendlyError("%s", err)
	}
	return nil
}

func absDir(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.WithContext(err, "expand")
	}

	if !filepath.IsAbs(expanded) {
		return "", errors.NewFriendlyError("%q must be an absolute path", path)
	}
	return filepath.Clean(expanded), nil
}

// Sync replaces the tracked paths with the contents of the backup directory.
func Sync() error {
	cfg, err := parseConfig()
	if err != nil {
		return errors.WithContext(err, "read config")
	}

	if err := reconcile(&cfg); err != nil {
		return errors.WithContext(err, "reconcile")
	}

	if err := writeConfig(cfg); err != nil {
		return errors.WithContext(err, "write config")
	}

	log.WithFields(log.Fields{
		"dirs":  cfg.DirsLocal,
		"files": cfg.FilesLocal,
	}).Info("Synced tracked paths with the backup directory")
	return nil
}
