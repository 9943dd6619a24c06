package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/gitmover/pkg/errors"
	"github.com/sidkik/gitmover/pkg/version"
)

const testPath = "/home/u/.config/gitmover/history.log"

func readEntries(t *testing.T) (entries []map[string]interface{}) {
	contents, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)

	scanner := bufio.NewScanner(bytes.NewReader(contents))
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestHistoryLogger(t *testing.T) {
	fs = afero.NewMemMapFs()
	Log = newHistoryLogger()

	// Entries logged before the history is enabled are dropped.
	Log.Info("dropped")
	exists, err := afero.Exists(fs, testPath)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, Enable(testPath))

	mockTime := time.Unix(1569172899, 0).UTC()
	Log.WithFields(logrus.Fields{
		"operation": "push",
		"outcome":   "forced",
	}).WithTime(mockTime).Info("Push finished")
	Log.WithFields(logrus.Fields{
		"operation": "prepare",
		"error":     errors.New("permission denied"),
	}).WithTime(mockTime).Error("Failed to clear backup")

	assert.Equal(t, []map[string]interface{}{
		{
			"stream":    "operation",
			"version":   version.Version,
			"operation": "push",
			"outcome":   "forced",
			"level":     "info",
			"message":   "Push finished",
			"timestamp": "2019-09-22T17:21:39Z",
		},
		{
			"stream":    "operation",
			"version":   version.Version,
			"operation": "prepare",
			"error":     "permission denied",
			"level":     "error",
			"message":   "Failed to clear backup",
			"timestamp": "2019-09-22T17:21:39Z",
		},
	}, readEntries(t))
}

func TestLogHook(t *testing.T) {
	fs = afero.NewMemMapFs()

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	logger.AddHook(NewLogHook(testPath))

	logger.Info("not recorded")
	logger.WithField("path", "notes").Warn("Skipping tracked path")

	entries := readEntries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, "logging", entries[0]["stream"])
	assert.Equal(t, "warning", entries[0]["level"])
	assert.Equal(t, "notes", entries[0]["path"])
	assert.Equal(t, "Skipping tracked path", entries[0]["message"])
}

func TestWriteFailureIgnored(t *testing.T) {
	fs = afero.NewReadOnlyFs(afero.NewMemMapFs())
	h := &hook{logrus.AllLevels, operationStream, testPath}
	assert.NoError(t, h.Fire(logrus.NewEntry(logrus.New())))
}
