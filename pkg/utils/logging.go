package utils

import (
    "os"
    "path/filepath"
    "strings"
    "sync"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

var (
    logger *zap.Logger
    once   sync.Once
)

// Logger returns the process-wide logger. LOG_LEVEL picks the level (default info) and
// LOG_FILE, when set, tees JSON lines into that file as well as stdout.
func Logger() *zap.Logger {
    once.Do(func() { logger = build(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")) })
    return logger
}

// ParseLevel maps debug|info|warn|error to a zap level; anything else is info.
func ParseLevel(s string) zapcore.Level {
    var lvl zapcore.Level
    if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil || s == "" {
        return zapcore.InfoLevel
    }
    return lvl
}

func build(level, logFile string) *zap.Logger {
    lvl := ParseLevel(level)
    encCfg := zap.NewProductionEncoderConfig()
    encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
    enc := zapcore.NewJSONEncoder(encCfg)
    consoleCore := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lvl)
    if logFile == "" { return zap.New(consoleCore, zap.AddCaller()) }

    _ = os.MkdirAll(filepath.Dir(logFile), 0o755)
    f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        l := zap.New(consoleCore, zap.AddCaller())
        l.Warn("log file unavailable, logging to stdout only", zap.String("path", logFile), zap.Error(err))
        return l
    }
    fileCore := zapcore.NewCore(enc, zapcore.AddSync(f), lvl)
    return zap.New(zapcore.NewTee(fileCore, consoleCore), zap.AddCaller())
}
