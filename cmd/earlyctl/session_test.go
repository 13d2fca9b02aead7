package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/earlyalloc/cmd/earlyctl/logger"
	"github.com/joshuapare/earlyalloc/config"
)

func TestOpenSession_LogsLayout(t *testing.T) {
	var out bytes.Buffer
	logger.Init(logger.Options{Enabled: true, Level: slog.LevelInfo, Writer: &out})
	t.Cleanup(func() { logger.Init(logger.Options{}) })

	c := config.Default()
	c.RegionSize = 64 * config.KiB
	s, err := openSession(c)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.True(t, s.region.Contains(s.early.Stats().Start, s.early.TotalBytes()))
	assert.Contains(t, out.String(), "msg=\"allocator ready\"")
	assert.Contains(t, out.String(), "total_pages=16")
	assert.NotContains(t, out.String(), "level=DEBUG", "debug records are below the configured level")
}
