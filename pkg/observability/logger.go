// Package observability contains logging setup shared by both pipeshell
// binaries.
package observability

import (
    "os"
    "path/filepath"
    "strings"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
    "gopkg.in/natefinch/lumberjack.v2"

    "pipeshell/pkg/config"
)

// SetupLogger builds the process logger from config, installs it as the
// global logger, and redirects the stdlib log package. The caller should
// defer logger.Sync().
func SetupLogger(c config.LogConfig) (*zap.Logger, error) {
    enc := newEncoder(c)
    level := parseLevel(c.Level)

    var cores []zapcore.Core
    for _, out := range c.Outputs {
        ws, err := openSink(out, c.Rotation)
        if err != nil {
            return nil, err
        }
        cores = append(cores, zapcore.NewCore(enc, ws, level))
    }
    if len(cores) == 0 {
        cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(os.Stderr), level))
    }

    opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)}
    if c.Development {
        opts = append(opts, zap.Development())
    }

    logger := zap.New(zapcore.NewTee(cores...), opts...)
    zap.ReplaceGlobals(logger)
    _, _ = zap.RedirectStdLogAt(logger, zap.InfoLevel)
    return logger, nil
}

func parseLevel(s string) zapcore.Level {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "debug":
        return zap.DebugLevel
    case "warn", "warning":
        return zap.WarnLevel
    case "error":
        return zap.ErrorLevel
    default:
        return zap.InfoLevel
    }
}

func newEncoder(c config.LogConfig) zapcore.Encoder {
    if strings.ToLower(c.Format) == "json" {
        return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
    }
    ec := zap.NewDevelopmentEncoderConfig()
    if c.Development {
        ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
    }
    return zapcore.NewConsoleEncoder(ec)
}

// openSink maps an output name to a write syncer: stdout, stderr, or a
// file path, rotated by lumberjack when rotation is enabled.
func openSink(out string, rot config.RotationConfig) (zapcore.WriteSyncer, error) {
    switch strings.ToLower(out) {
    case "stdout":
        return zapcore.AddSync(os.Stdout), nil
    case "stderr":
        return zapcore.AddSync(os.Stderr), nil
    }
    if rot.Enable {
        return zapcore.AddSync(&lumberjack.Logger{
            Filename:   out,
            MaxSize:    rot.MaxSizeMB,
            MaxBackups: rot.MaxBackups,
            MaxAge:     rot.MaxAgeDays,
            Compress:   rot.Compress,
        }), nil
    }
    if dir := filepath.Dir(out); dir != "." {
        if err := os.MkdirAll(dir, 0o755); err != nil {
            return nil, err
        }
    }
    f, err := os.OpenFile(out, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
    if err != nil {
        return nil, err
    }
    return zapcore.AddSync(f), nil
}
