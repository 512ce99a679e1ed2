// Package logging provides the structured logger threaded through sarus
// components.
//
// Unlike a package-level slog.Default(), a [Logger] is a value: it is
// constructed once by the CLI and passed to components that want to log,
// each deriving a child with [Logger.With] or [Logger.WithGroup]. This
// keeps logging testable and avoids a global mutable singleton.
//
// The CLI configures the root logger's level and, for interactive
// terminals, installs a colorized handler built on github.com/fatih/color;
// redirected output falls back to a plain [slog.TextHandler].
package logging
