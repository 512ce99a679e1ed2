package main

import (
	"log/slog"
	"os"

	"github.com/cruciblehq/sarus/internal"
	"github.com/cruciblehq/sarus/internal/cli"
)

// The entry point for the sarus CLI.
//
// Initializes a bootstrap logger, then hands off to the root command,
// which reconfigures logging once flags are parsed. Exits non-zero on
// any error the command returns; "run" propagates the OCI runtime's
// own exit code directly instead of going through this path.
func main() {
	slog.SetDefault(bootstrapLogger())

	slog.Debug("build", "version", internal.VersionString())
	slog.Debug("sarus is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// bootstrapLogger returns a plain text logger for messages emitted
// before flags are parsed; cli.Execute builds the real, flag-aware
// logger and passes it explicitly into each subcommand.
func bootstrapLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()})
	return slog.New(handler).WithGroup(internal.Name)
}

// logLevel returns the log level derived from build-time linker flags.
func logLevel() slog.Level {
	if internal.IsDebug() {
		return slog.LevelDebug
	}
	if internal.IsQuiet() {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// cwd returns the current working directory or "(unknown)".
func cwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return dir
}
