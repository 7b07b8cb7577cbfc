package log

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger configures the default slog logger for the given level
// ("debug", "info", "warn", "error"), emitting JSON records with
// cockroachdb/errors stack traces attached to any "error" attribute.
func SetupLogger(level string) {
	opts := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(level),
	}
	handler := slog.NewJSONHandler(os.Stdout, &opts)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))
}

// ToLogLevel maps a level name to the corresponding slog.Level.
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

// ErrAttr wraps err for passing to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
