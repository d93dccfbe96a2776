package utils

import (
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
    assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
    assert.Equal(t, zapcore.WarnLevel, ParseLevel(" WARN "))
    assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
    assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
    assert.Equal(t, zapcore.InfoLevel, ParseLevel("chatty"))
}

func TestBuildWritesLogFile(t *testing.T) {
    path := filepath.Join(t.TempDir(), "logs", "trainer.log")
    l := build("warn", path)
    l.Info("dropped")
    l.Warn("kept")
    _ = l.Sync()

    raw, err := os.ReadFile(path)
    require.NoError(t, err)
    assert.Contains(t, string(raw), `"msg":"kept"`)
    assert.NotContains(t, string(raw), "dropped")
}

func TestLoggerIsShared(t *testing.T) {
    assert.Same(t, Logger(), Logger())
}
