package main

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mcptest/mcptest/pkg/logging"
)

// newCLILogger builds the slog.Logger wired into pkg/mcp (pkg/testrunner
// does not log) for this invocation: human-readable text to stderr,
// plus a rotating file tee when --log-file is set so repeated `mcptest
// run` invocations don't grow one log file without bound.
func newCLILogger() *slog.Logger {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}

	out := io.Writer(os.Stderr)
	if flagLogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   flagLogFile,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out = io.MultiWriter(os.Stderr, rotator)
	}

	return logging.NewStructuredLogger(logging.Config{
		Level:     level,
		Format:    logging.FormatText,
		Output:    out,
		Component: "mcptest",
	})
}
