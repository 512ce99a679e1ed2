package rundriver

import "errors"

// ErrRuntime is the sentinel wrapped when the external OCI runtime
// cannot even be started (as opposed to starting and exiting non-zero,
// which is reported through the exit code, not an error).
var ErrRuntime = errors.New("runtime driver error")
