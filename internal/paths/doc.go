// Package paths provides filesystem locations sarus uses outside the
// image repository itself: the default per-user repository root and the
// scratch-directory base for in-progress pulls.
package paths
