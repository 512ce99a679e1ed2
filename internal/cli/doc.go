// Package cli parses flags and dispatches the sarus subcommands: pull,
// images, rmi, run, and version.
//
// Global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//
// Flags override build-time defaults set via linker flags. After
// parsing, the root logger is built from the final level and bound
// into every subcommand's Run method.
package cli
