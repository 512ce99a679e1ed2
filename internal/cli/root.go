package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/cruciblehq/sarus/internal"
	"github.com/cruciblehq/sarus/internal/logging"
)

// RootCmd is the root command for the sarus CLI.
var RootCmd struct {
	Quiet   bool `short:"q" help:"Suppress informational output."`
	Verbose bool `short:"v" help:"Enable verbose output."`
	Debug   bool `short:"d" help:"Enable debug output."`

	LocalRepository          string `help:"Override the default per-user image repository." placeholder:"DIR"`
	CentralizedRepositoryDir string `help:"Path to the centralized (shared) image repository." placeholder:"DIR" env:"SARUS_CENTRALIZED_REPOSITORY"`
	PrefixDir                string `help:"sarus installation prefix." default:"/opt/sarus" placeholder:"DIR"`

	SkopeoPath     string `help:"Path to the skopeo binary; resolved from PATH if unset." placeholder:"PATH"`
	UmociPath      string `help:"Path to the umoci binary; resolved from PATH if unset." placeholder:"PATH"`
	MksquashfsPath string `help:"Path to the mksquashfs binary; resolved from PATH if unset." placeholder:"PATH"`
	RuncPath       string `help:"Path to the runc binary; resolved from PATH if unset." placeholder:"PATH"`

	Pull    PullCmd    `cmd:"" help:"Pull an image into the local image repository."`
	Images  ImagesCmd  `cmd:"" help:"List images in the local image repository."`
	Rmi     RmiCmd     `cmd:"" help:"Remove an image from the local image repository."`
	Run     RunCmd     `cmd:"" help:"Run a command inside a pulled image."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Execute parses arguments, configures logging, and runs the selected
// subcommand.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("sarus is a user-space container engine for HPC hosts."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	log := newLogger()

	return kongCtx.Run(log)
}

// newLogger builds the root logger from the parsed global flags and
// build-time linker defaults, syncing the flags into internal's
// process-wide mode state so any later IsQuiet/IsDebug/IsVerbose
// caller (e.g. a bootstrap path that ran before flags were parsed)
// sees the same values this logger was built from.
func newLogger() logging.Logger {
	internal.SetQuiet(RootCmd.Quiet || internal.IsQuiet())
	internal.SetDebug(RootCmd.Debug || internal.IsDebug())
	internal.SetVerbose(RootCmd.Verbose || internal.IsVerbose())

	debug := internal.IsDebug()
	verbose := internal.IsVerbose()
	quiet := internal.IsQuiet()

	level := slog.LevelInfo
	switch {
	case debug || verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}

	return logging.New(os.Stderr, level, isatty(os.Stderr))
}

// isatty reports whether f is an interactive terminal.
func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
