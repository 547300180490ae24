package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "api.log")
	l, err := NewLogger(Options{Level: "debug", Format: "json", Output: "file", FilePath: path})
	require.NoError(t, err)

	l.Info("order created", "order_id", "abc")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"order_id":"abc"`)
	assert.Contains(t, string(data), `"msg":"order created"`)
}

func TestNewLoggerRequiresFilePath(t *testing.T) {
	_, err := NewLogger(Options{Output: "file"})
	assert.Error(t, err)
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With("tenant_id", "t-1")

	l.Warn("stock low", "product", "Marco 20x30")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "t-1", fields["tenant_id"])
	assert.Equal(t, "Marco 20x30", fields["product"])
}

func TestNopDoesNotPanic(t *testing.T) {
	l := NewNop()
	l.Error("ignored", "k", 1)
	assert.NoError(t, l.Sync())
}
