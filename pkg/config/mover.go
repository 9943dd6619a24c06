package config

import (
	"path/filepath"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/gitmover/pkg/errors"
)

const (
	// ConfigPath is the default path to the gitmover config.
	ConfigPath = "~/.config/gitmover/config.yaml"

	// InitialConfigVersion is the first version of the gitmover config.
	// Config files that do not specify a version will default to this
	// version.
	InitialConfigVersion = "v1alpha1"

	// SupportedConfigVersion is the config version supported by the current
	// gitmover binary.
	SupportedConfigVersion = "v1alpha1"

	// MetadataDir is the directory inside the backup root that holds git's
	// own state. It's never mirrored, deleted, or tracked.
	MetadataDir = ".git"
)

// Config describes what gets backed up, and where.
type Config struct {
	Version string `json:"version,omitempty"`

	// Remote is the URL of the `origin` remote of the backup repository.
	Remote string `json:"remote"`

	// DirsLocal and FilesLocal are the tracked paths, relative to both
	// HomeDir and DirBackup.
	DirsLocal  []string `json:"dirs_local"`
	FilesLocal []string `json:"files_local"`

	HomeDir   string `json:"home_dir"`
	DirBackup string `json:"dir_backup"`
}

func (c Config) getVersion() string {
	return c.Version
}

// Mocked in unit tests.
var (
	homedirExpand = homedir.Expand
	homedirDir    = homedir.Dir
)

// Default returns the config that's written the first time gitmover runs.
// The backup directory is deliberately left empty so that the user has to
// choose it.
func Default() (Config, error) {
	home, err := homedirDir()
	if err != nil {
		return Config{}, errors.WithContext(err, "find home directory")
	}
	return Config{
		Version:    SupportedConfigVersion,
		DirsLocal:  []string{},
		FilesLocal: []string{},
		HomeDir:    home,
	}, nil
}

// Parse reads the config stored at the default path. If the file doesn't
// exist yet, a default config is generated and written.
func Parse() (Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return Config{}, errors.WithContext(err, "expand config path")
	}

	cfg := Config{Version: InitialConfigVersion}
	if err := parseConfig(path, &cfg, SupportedConfigVersion); err != nil {
		if _, ok := err.(errors.FileNotFound); !ok {
			return Config{}, errors.WithContext(err, "parse")
		}

		cfg, err = Default()
		if err != nil {
			return Config{}, errors.WithContext(err, "generate default config")
		}
		if err := Write(cfg); err != nil {
			return Config{}, errors.WithContext(err, "write default config")
		}
		log.WithField("path", path).Info("Generated config file")
	}

	if cfg.HomeDir, err = homedirExpand(cfg.HomeDir); err != nil {
		return Config{}, errors.WithContext(err, "expand home directory")
	}
	if cfg.DirBackup, err = homedirExpand(cfg.DirBackup); err != nil {
		return Config{}, errors.WithContext(err, "expand backup directory")
	}
	return cfg, nil
}

// Write writes the given config to disk.
func Write(cfg Config) error {
	cfg.Version = SupportedConfigVersion
	path, err := GetConfigPath()
	if err != nil {
		return errors.WithContext(err, "expand config path")
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WithContext(err, "make config directory")
	}

	if err := afero.WriteFile(fs, path, yamlBytes, 0644); err != nil {
		return errors.WithContext(err, "write")
	}
	return nil
}

// Marshal returns the yaml representation of the config, as it would be
// written to disk.
func Marshal(cfg Config) ([]byte, error) {
	cfg.Version = SupportedConfigVersion
	return yaml.Marshal(cfg)
}

// GetConfigPath returns the path to the gitmover config. This path is
// expanded, so it can be directly passed to file operations.
func GetConfigPath() (string, error) {
	return homedirExpand(ConfigPath)
}
