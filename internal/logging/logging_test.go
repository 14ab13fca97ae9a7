package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log, flush, err := New(Options{Level: "warn", Stderr: &buf})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	flush()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "WARN")
}

func TestNew_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knowme.log")
	log, flush, err := New(Options{File: path, Quiet: true})
	require.NoError(t, err)

	log.Info("test created")
	flush()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "test created", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestNew_QuietWithoutFileIsNop(t *testing.T) {
	log, flush, err := New(Options{Quiet: true})
	require.NoError(t, err)
	log.Error("dropped")
	flush()
}

func TestNew_BadOptions(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, _, err = New(Options{Format: "xml", Stderr: &bytes.Buffer{}})
	assert.Error(t, err)
}
