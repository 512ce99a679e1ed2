package repository

import "errors"

// ErrNotFound is the sentinel returned by lookups that find no
// matching stored image.
var ErrNotFound = errors.New("image not found in repository")

// ErrRepository is the sentinel wrapped by repository I/O, index
// corruption, and key-collision failures.
var ErrRepository = errors.New("repository error")
