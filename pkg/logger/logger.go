package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is stamped on every entry.
const ServiceName = "payment-event-pipeline"

// New returns the process logger writing to stdout. Pretty switches to the
// console writer for local runs; production output stays one JSON object per line.
func New(level string, pretty bool) zerolog.Logger {
	if !pretty {
		return build(os.Stdout, level).With().Caller().Logger()
	}
	return build(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}, level).
		With().Caller().Logger()
}

// NewWithWriter builds the same logger on top of w, without caller info.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return build(w, level)
}

// Component returns a child logger tagged with the pipeline component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func build(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("service", ServiceName).
		Logger()
}

// parseLevel falls back to info for empty, unknown or disabling levels.
func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel || lvl == zerolog.Disabled {
		return zerolog.InfoLevel
	}
	return lvl
}
