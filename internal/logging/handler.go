package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/fatih/color"
)

// prettyHandler renders log records as a single colorized line:
//
//	LEVEL message key=value key=value
//
// Colors are chosen per level; attributes are always dimmed so the
// message stands out. It implements [slog.Handler] directly instead of
// wrapping slog.TextHandler so the level token can be colored in place.
type prettyHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func newPrettyHandler(w io.Writer, level slog.Level) *prettyHandler {
	return &prettyHandler{mu: &sync.Mutex{}, out: w, level: level}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	levelStyle, levelText := levelStyle(r.Level)

	h.mu.Lock()
	defer h.mu.Unlock()

	fmt.Fprintf(h.out, "%s %s", levelStyle.Sprint(levelText), r.Message)

	dim := color.New(color.Faint)
	for _, a := range h.attrs {
		writeAttr(h.out, dim, h.groups, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(h.out, dim, h.groups, a)
		return true
	})
	fmt.Fprintln(h.out)

	return nil
}

func writeAttr(w io.Writer, dim *color.Color, groups []string, a slog.Attr) {
	key := a.Key
	for i := len(groups) - 1; i >= 0; i-- {
		key = groups[i] + "." + key
	}
	dim.Fprintf(w, " %s=%v", key, a.Value)
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func levelStyle(level slog.Level) (*color.Color, string) {
	switch {
	case level >= slog.LevelError:
		return color.New(color.FgRed, color.Bold), "ERROR"
	case level >= slog.LevelWarn:
		return color.New(color.FgYellow, color.Bold), "WARN "
	case level >= slog.LevelInfo:
		return color.New(color.FgCyan, color.Bold), "INFO "
	default:
		return color.New(color.FgMagenta), "DEBUG"
	}
}
