// Package repository implements the on-disk local image repository:
// directory layout, the JSON index of stored images, and the atomic,
// lock-guarded operations that keep squashfs files, metadata sidecars,
// and the index consistent with each other.
package repository
