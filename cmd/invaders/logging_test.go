package main

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTempLogDir points logDir at a fresh temp directory for one test
func useTempLogDir(t *testing.T) string {
	t.Helper()
	prev := logDir
	logDir = filepath.Join(t.TempDir(), "logs")
	t.Cleanup(func() {
		logDir = prev
		log.SetOutput(os.Stderr)
	})
	return logDir
}

func TestSetupLogging_DisabledByDefault(t *testing.T) {
	dir := useTempLogDir(t)

	logFile, _ := setupLogging(false)
	assert.Nil(t, logFile, "expected nil log file when debug=false")
	assert.Equal(t, io.Discard, log.Writer())

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "logs directory must not be created")
}

func TestSetupLogging_EnabledWithDebug(t *testing.T) {
	dir := useTempLogDir(t)

	logFile, logger := setupLogging(true)
	require.NotNil(t, logFile)
	defer logFile.Close()

	logPath := filepath.Join(dir, logFileName)
	require.FileExists(t, logPath)

	logger.Info().Str("clip", "pew").Msg("test message")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	require.NotEmpty(t, line)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "test message", entry["message"])
	assert.Equal(t, "pew", entry["clip"])
	assert.Equal(t, "info", entry["level"])
}

func TestSetupLogging_Rotation(t *testing.T) {
	dir := useTempLogDir(t)
	require.NoError(t, os.MkdirAll(dir, 0755))

	logPath := filepath.Join(dir, logFileName)
	require.NoError(t, os.WriteFile(logPath, make([]byte, maxLogSize+1), 0644))

	logFile, _ := setupLogging(true)
	require.NotNil(t, logFile)
	defer logFile.Close()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	rotatedFound := false
	for _, entry := range entries {
		if entry.Name() != logFileName && filepath.Ext(entry.Name()) == ".log" {
			rotatedFound = true
			break
		}
	}
	assert.True(t, rotatedFound, "expected to find rotated log file")

	info, err := os.Stat(logPath)
	require.NoError(t, err)
	assert.LessOrEqual(t, info.Size(), int64(maxLogSize))
}

func TestSetupLogging_NoStdoutStderr(t *testing.T) {
	useTempLogDir(t)

	logFile, _ := setupLogging(true)
	require.NotNil(t, logFile)
	defer logFile.Close()

	output := log.Writer()
	assert.NotEqual(t, os.Stdout, output)
	assert.NotEqual(t, os.Stderr, output)
}
