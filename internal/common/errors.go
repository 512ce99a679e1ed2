package common

import "errors"

// ErrInvalidInput is the sentinel wrapped by mount/device string parse
// failures, mirroring the InvalidInput error kind.
var ErrInvalidInput = errors.New("invalid input")
