package bundle

import "errors"

// ErrSyscall is the sentinel wrapped by unshare/mount/loop-device and
// filesystem syscall failures during bundle assembly.
var ErrSyscall = errors.New("syscall error")

// ErrBundle is the sentinel wrapped when a bundle-assembly step's
// precondition is violated.
var ErrBundle = errors.New("bundle assembly error")
