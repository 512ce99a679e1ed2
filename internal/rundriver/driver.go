package rundriver

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pkg/errors"

	"github.com/cruciblehq/sarus/internal/logging"
)

// proxiedSignals are forwarded from sarus into the runtime child for
// the lifetime of one run.
var proxiedSignals = []os.Signal{
	syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP,
	syscall.SIGQUIT, syscall.SIGUSR1, syscall.SIGUSR2,
}

// Execute runs "<runcPath> run --preserve-fds <extraFds> <containerID>"
// with its working directory set to bundleDir, proxies terminal
// signals into it for as long as it runs, and returns the exit code
// sarus itself should exit with.
func Execute(ctx context.Context, log logging.Logger, runcPath, bundleDir string, extraFds int) (int, error) {
	containerID, err := newContainerID()
	if err != nil {
		return 0, errors.Wrap(ErrRuntime, "generating container id: "+err.Error())
	}

	args := []string{"run", "--preserve-fds", strconv.Itoa(extraFds), containerID}
	cmd := exec.CommandContext(ctx, runcPath, args...)
	cmd.Dir = bundleDir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGHUP}

	ClearHostEnvironment()

	log.Info("starting runtime", "runc", runcPath, "container", containerID, "preserveFds", extraFds)
	if err := cmd.Start(); err != nil {
		return 0, errors.Wrapf(ErrRuntime, "starting %q: %s", runcPath, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, proxiedSignals...)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	defer close(done)
	go proxySignals(cmd, sigCh, done)

	waitErr := cmd.Wait()
	exitCode, err := resolveExitCode(waitErr)
	if err != nil {
		return 0, errors.Wrap(ErrRuntime, err.Error())
	}
	log.Info("runtime exited", "container", containerID, "exitCode", exitCode)
	return exitCode, nil
}

func proxySignals(cmd *exec.Cmd, sigCh <-chan os.Signal, done <-chan struct{}) {
	for {
		select {
		case sig := <-sigCh:
			if cmd.Process != nil {
				cmd.Process.Signal(sig)
			}
		case <-done:
			return
		}
	}
}

// resolveExitCode translates the error cmd.Wait returns into an exit
// code: nil means the child exited 0, an *exec.ExitError carries the
// child's own wait status, anything else means the runtime could not
// even be waited on.
func resolveExitCode(waitErr error) (int, error) {
	if waitErr == nil {
		return 0, nil
	}
	exitErr, ok := waitErr.(*exec.ExitError)
	if !ok {
		return 0, waitErr
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return 0, waitErr
	}
	return exitCodeFromWaitStatus(status), nil
}
