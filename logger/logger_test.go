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
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	lvl, err = ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "warn", Console: true, Output: &buf})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("navigation mesh build failed", zap.String("stage", "contours"))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "navigation mesh build failed")
	assert.Contains(t, out, `"stage": "contours"`)
}

func TestFileOutputIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navbuild.log")
	cfg := DefaultFileConfig(path)
	cfg.Compress = false

	log, err := New(Options{Level: "debug", File: cfg})
	require.NoError(t, err)
	log.Debug("rasterize", zap.Int("triangles", 14))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "rasterize", entry["msg"])
	assert.Equal(t, float64(14), entry["triangles"])
}

func TestNoOutputsIsNop(t *testing.T) {
	log, err := New(Options{})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.ErrorLevel))

	_, err = New(Options{Level: "nope", Console: true})
	assert.Error(t, err)
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("x.log")
	assert.Equal(t, FileConfig{Path: "x.log", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 7, Compress: true}, cfg)
}
