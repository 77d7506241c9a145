package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestWriterLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWriterLogger(&buf, "debug")
	require.NoError(t, err)

	l.WithField("request_id", "r-1").
		WithFields(map[string]any{"action": "click"}).
		Info("Action executed", "confidence", 0.93)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))

	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Action executed", entry["message"])
	assert.Equal(t, "r-1", entry["request_id"])
	assert.Equal(t, "click", entry["action"])
	assert.InDelta(t, 0.93, entry["confidence"], 1e-9)
	assert.Contains(t, entry, "timestamp")
}

func TestWriterLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWriterLogger(&buf, "warn")
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "shown")
}

func TestNewLoggerAdapter_CreatesFile(t *testing.T) {
	dir := t.TempDir()

	l, err := NewLoggerAdapter("exec click/submit", Options{Level: "info", Dir: dir})
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, l.Close())

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasSuffix(files[0].Name(), "_exec_click_submit.log"))

	data, err := os.ReadFile(filepath.Join(dir, files[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	lvl, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "click_the_Submit_button", sanitize("click the Submit button"))
	assert.Equal(t, "resolver", sanitize("!!!"))
	assert.Len(t, sanitize(strings.Repeat("a", 100)), 60)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Error("nothing", "k", "v")
	assert.NoError(t, l.Close())
}
