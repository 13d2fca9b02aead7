package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	Init(Options{Enabled: false})
	assert.False(t, L.Enabled(t.Context(), slog.LevelError))
}

func TestInit_JSON(t *testing.T) {
	var out bytes.Buffer
	Init(Options{Enabled: true, JSON: true, Level: slog.LevelInfo, Writer: &out})
	t.Cleanup(func() { Init(Options{}) })

	Debug("hidden")
	Info("mapped", "size", 4096)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "mapped", rec["msg"])
	assert.EqualValues(t, 4096, rec["size"])
}

func TestInit_Text(t *testing.T) {
	var out bytes.Buffer
	Init(Options{Enabled: true, Level: slog.LevelWarn, Writer: &out})
	t.Cleanup(func() { Init(Options{}) })

	Info("hidden")
	Warn("low", "available", 8)
	Error("boom")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "msg=low available=8")
	assert.Contains(t, out.String(), "level=ERROR msg=boom")
}
