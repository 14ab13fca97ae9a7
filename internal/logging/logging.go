// Package logging builds the process logger: a console core on stderr and
// an optional JSON core writing to a rotated file.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the sinks and level.
type Options struct {
	Level  string // debug, info, warn, error; empty means info
	File   string // rotated JSON log file; empty disables it
	Format string // console or json, for the stderr sink

	// Quiet drops the stderr sink, for full-screen terminal UIs.
	Quiet bool

	// Stderr replaces os.Stderr, mainly for tests.
	Stderr io.Writer
}

// New returns a logger and a function flushing its sinks.
func New(opts Options) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var cores []zapcore.Core
	var file *lumberjack.Logger
	if opts.File != "" {
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), level))
	}

	if !opts.Quiet {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		var enc zapcore.Encoder
		switch opts.Format {
		case "", "console":
			enc = zapcore.NewConsoleEncoder(encCfg)
		case "json":
			enc = zapcore.NewJSONEncoder(encCfg)
		default:
			return nil, nil, fmt.Errorf("log format %q: want console or json", opts.Format)
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(w), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), func() {}, nil
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	flush := func() {
		_ = log.Sync()
		if file != nil {
			_ = file.Close()
		}
	}
	return log, flush, nil
}
