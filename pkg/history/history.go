package history

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/gitmover/pkg/errors"
	"github.com/sidkik/gitmover/pkg/version"
)

// Path is the default location of the history log.
const Path = "~/.config/gitmover/history.log"

var (
	// Log is the global history logger. Entries logged via this object are
	// appended to the history file once Enable has been called. Until then,
	// they're discarded.
	Log = newHistoryLogger()

	// Mocked out for unit testing.
	fs = afero.NewOsFs()
)

const (
	operationStream = "operation"
	loggingStream   = "logging"
)

var historyFormatter = &logrus.JSONFormatter{
	FieldMap: logrus.FieldMap{
		logrus.FieldKeyTime:  "timestamp",
		logrus.FieldKeyLevel: "level",
		logrus.FieldKeyMsg:   "message",
	},
}

func newHistoryLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)
	return logger
}

// Enable starts appending history entries to the file at `path`.
func Enable(path string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WithContext(err, "make history directory")
	}

	Log.AddHook(&hook{logrus.AllLevels, operationStream, path})
	return nil
}

// NewLogHook creates a hook that copies warnings and errors from another
// logger into the history file at `path`.
func NewLogHook(path string) logrus.Hook {
	levels := []logrus.Level{logrus.WarnLevel, logrus.ErrorLevel}
	return &hook{levels, loggingStream, path}
}

type hook struct {
	levels     []logrus.Level
	streamType string
	path       string
}

func (h *hook) Levels() []logrus.Level {
	return h.levels
}

func (h *hook) Fire(entry *logrus.Entry) error {
	dataCopy := logrus.Fields{
		"stream":  h.streamType,
		"version": version.Version,
	}
	for k, v := range entry.Data {
		dataCopy[k] = v
	}

	// Copy the entry so that the caller's fields aren't modified.
	entryCopy := *entry
	entryCopy.Data = dataCopy

	jsonBytes, err := historyFormatter.Format(&entryCopy)
	if err != nil {
		logrus.WithError(err).Debug("Failed to marshal history entry")
		return nil
	}

	if err := appendFile(h.path, jsonBytes); err != nil {
		logrus.WithError(err).Debug("Failed to write history")
	}

	// Never return an error because logrus prints hook errors directly to
	// stderr, and history is best effort.
	return nil
}

func appendFile(path string, contents []byte) error {
	f, err := fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithContext(err, "open")
	}

	if _, err := f.Write(contents); err != nil {
		f.Close()
		return errors.WithContext(err, "write")
	}
	return f.Close()
}
