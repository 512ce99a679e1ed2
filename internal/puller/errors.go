package puller

import "errors"

// ErrAuthentication is the sentinel wrapped by pulls that fail
// authentication; these are never retried.
var ErrAuthentication = errors.New("registry authentication failed")
