// Package bundle assembles the on-disk OCI runtime bundle under a
// private mount namespace: the rootfs overlay (loop-mounted squashfs
// lower layer plus a writable upper layer), /dev, the copied /etc
// files, custom and device mounts, and the generated config.json.
package bundle
