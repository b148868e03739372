package logging

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithConfig_ConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithConfig(LogConfig{Level: "warn", Console: true, Out: &buf})

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "WRN")
}

func TestNewLoggerWithConfig_FileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "trademind.log")
	logger := NewLoggerWithConfig(LogConfig{Level: "debug", File: true, FilePath: path, MaxSize: 1})

	LogTradeDeleted(logger, "t-1")

	assert.FileExists(t, path)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
	assert.True(t, ValidLevel("error"))
	assert.False(t, ValidLevel("trace"))
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithLogger(context.Background(), WithUser(logger, "u-1"))
	l := FromContext(ctx)
	LogProfileRefresh(l, "u-1", time.Millisecond, errors.New("offline"))
	l.Info().Msg("hello")

	require.Contains(t, buf.String(), `"user_id":"u-1"`)
	assert.Contains(t, buf.String(), "hello")

	// Missing logger falls back to a no-op one.
	fallback := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, fallback.GetLevel())
	fallback.Info().Msg("dropped")
}
