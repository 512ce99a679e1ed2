package rundriver

import "syscall"

// exitCodeFromWaitStatus renders a child's wait status the way a
// POSIX shell would: the child's own exit code, or 128+signal if it
// was terminated by a signal.
func exitCodeFromWaitStatus(status syscall.WaitStatus) int {
	if status.Signaled() {
		return 128 + int(status.Signal())
	}
	return status.ExitStatus()
}
