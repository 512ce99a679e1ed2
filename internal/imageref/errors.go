package imageref

import "errors"

// ErrInvalidReference is the sentinel wrapped by every parse failure.
var ErrInvalidReference = errors.New("invalid image reference")
