// Package exectool runs the external binaries the core delegates to
// (skopeo, umoci, mksquashfs, runc) and wraps their failures with
// captured stdout/stderr, the way moby and podman invoke their own
// external helpers.
package exectool
