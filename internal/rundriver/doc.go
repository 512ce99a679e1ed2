// Package rundriver forks and executes the external OCI runtime
// against an assembled bundle: it clears the host environment down to
// a minimal PATH, arranges for the child to die if sarus itself dies
// first, proxies signals into the child for the duration of the run,
// and translates the child's termination into sarus's own exit code.
package rundriver
