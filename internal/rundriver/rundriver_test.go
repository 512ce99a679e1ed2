package rundriver

import (
	"os/exec"
	"regexp"
	"syscall"
	"testing"
)

var containerIDPattern = regexp.MustCompile(`^container-[0-9a-f]{16}$`)

func TestNewContainerIDFormat(t *testing.T) {
	id, err := newContainerID()
	if err != nil {
		t.Fatalf("newContainerID() error: %v", err)
	}
	if !containerIDPattern.MatchString(id) {
		t.Fatalf("id %q does not match %s", id, containerIDPattern)
	}
}

func TestNewContainerIDUnique(t *testing.T) {
	first, err := newContainerID()
	if err != nil {
		t.Fatalf("newContainerID() error: %v", err)
	}
	second, err := newContainerID()
	if err != nil {
		t.Fatalf("newContainerID() error: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct container ids, got %q twice", first)
	}
}

func TestResolveExitCodeNilIsZero(t *testing.T) {
	code, err := resolveExitCode(nil)
	if err != nil || code != 0 {
		t.Fatalf("got (%d, %v), want (0, nil)", code, err)
	}
}

func TestResolveExitCodeNonExitErrorPropagates(t *testing.T) {
	_, err := exec.LookPath("a-command-that-should-not-exist-on-this-host")
	if err == nil {
		t.Skip("unexpectedly found a binary named a-command-that-should-not-exist-on-this-host")
	}
	code, gotErr := resolveExitCode(err)
	if gotErr == nil {
		t.Fatalf("expected resolveExitCode to propagate a non-ExitError, got code=%d", code)
	}
}

func TestExitCodeFromWaitStatusSignaled(t *testing.T) {
	// WaitStatus is a thin wrapper over the raw wait(2) status word;
	// bit layout: low byte nonzero and ((status & 0x7f) + 1) >> 1 > 0
	// marks a signal termination. Build one for SIGTERM (15).
	var status syscall.WaitStatus = 15
	if !status.Signaled() {
		t.Fatalf("expected constructed status to report Signaled()")
	}
	got := exitCodeFromWaitStatus(status)
	want := 128 + int(syscall.SIGTERM)
	if got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestExitCodeFromWaitStatusExited(t *testing.T) {
	// Exit code 3 encoded in bits 8-15 of the status word per wait(2).
	var status syscall.WaitStatus = 3 << 8
	if status.Signaled() {
		t.Fatalf("expected constructed status to report exited, not signaled")
	}
	if got := exitCodeFromWaitStatus(status); got != 3 {
		t.Fatalf("got %d, want 3", got)
	}
}
