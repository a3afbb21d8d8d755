package cli

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// newLogger creates an isolated logger; the global zerolog logger is never
// touched, so concurrent runs in tests do not interfere.
func newLogger(level zerolog.Level, format string, w io.Writer) zerolog.Logger {
	out := w
	if format == LogFormatConsole {
		out = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
