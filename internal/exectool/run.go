package exectool

import (
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Result captures a finished external tool invocation for logging
// and error reporting.
type Result struct {
	Path   string
	Args   []string
	Stdout string
	Stderr string
}

// Run executes path with args under ctx and returns its captured
// output. A non-zero exit is reported as ErrExternalTool, with the
// captured stdout/stderr folded into the error message.
func Run(ctx context.Context, path string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Path: path, Args: args, Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		return res, errors.Wrapf(ErrExternalTool, "%s %s: %s\nstdout: %s\nstderr: %s",
			path, strings.Join(args, " "), err, res.Stdout, res.Stderr)
	}
	return res, nil
}
