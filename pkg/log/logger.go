// Package log provides structured logging for the readmission pipeline.
//
// It is a thin layer over log/slog: Setup installs a JSON handler wrapped so
// that cockroachdb/errors stack traces surface as a dedicated attribute, and
// attributes.go defines the standard keys used when logging selection units
// (strategy, family, cohort, sample counts).
package log

import (
	"fmt"
	"log/slog"
	"os"
)

// Setup installs the process-wide slog default used by the pipeline.
func Setup(loglevel string) {
	ops := slog.HandlerOptions{
		Level: ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stderr, &ops)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))
}

// ToLogLevel converts a level name to a slog.Level.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level: %s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr wraps an error for slog so the handler can extract its stack trace.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
