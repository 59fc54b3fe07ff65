package main

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger writes JSON at info level, or human-readable console output at
// debug level when verbose is set.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	enc := zapcore.NewJSONEncoder(encCfg)
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	if verbose {
		devCfg := zap.NewDevelopmentEncoderConfig()
		devCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(devCfg)
		level.SetLevel(zapcore.DebugLevel)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)

	return zap.New(core).Named("fmscope")
}
