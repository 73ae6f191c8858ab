package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestNewLoggerTeesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "bot.log")

	logger, err := NewLogger("info", logFile)
	require.NoError(t, err)
	defer logger.Sync()

	logger.Info("gateway connected")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO")
	assert.Contains(t, string(data), "gateway connected")
}

func TestNewLoggerFileLevelFiltered(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "bot.log")

	logger, err := NewLogger("warn", logFile)
	require.NoError(t, err)
	defer logger.Sync()

	logger.Info("below threshold")
	logger.Warn("feed slow")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "below threshold")
	assert.Contains(t, string(data), "feed slow")
}
