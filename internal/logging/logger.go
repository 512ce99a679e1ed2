package logging

import (
	"io"
	"log/slog"
)

// Logger is a structured logger threaded explicitly through sarus
// components, rather than a package-level singleton.
type Logger struct {
	*slog.Logger
}

// New builds a [Logger] writing to w at the given level. When pretty is
// true (an interactive terminal), a colorized [prettyHandler] is used;
// otherwise a plain [slog.TextHandler] is used, suitable for log files
// and piped output.
func New(w io.Writer, level slog.Level, pretty bool) Logger {
	var handler slog.Handler
	if pretty {
		handler = newPrettyHandler(w, level)
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
	return Logger{slog.New(handler)}
}

// With returns a Logger that includes the given attributes in every
// subsequent record.
func (l Logger) With(args ...any) Logger {
	return Logger{l.Logger.With(args...)}
}

// WithGroup returns a Logger that nests subsequent attributes under name.
func (l Logger) WithGroup(name string) Logger {
	return Logger{l.Logger.WithGroup(name)}
}
