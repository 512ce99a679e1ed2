package exectool

import "errors"

// ErrExternalTool is the sentinel wrapped whenever an external
// binary exits non-zero.
var ErrExternalTool = errors.New("external tool error")
