// Package logging builds the console's file logger. The TUI owns the
// terminal, so nothing may write to stdout; logs go to a rotated JSON file
// under the data directory.
package logging

import (
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger writing to <dir>/logs/console.log. level is one of
// zap's level names ("debug", "info", ...); unknown values mean info.
func New(dir, level string) *zap.Logger {
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "logs", "console.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}

	lvl := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		lvl = parsed
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(rotator),
		lvl,
	)
	return zap.New(core)
}
