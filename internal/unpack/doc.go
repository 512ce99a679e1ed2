// Package unpack materializes a pulled OCI-layout image into an
// unpacked rootfs directory via an external unpacker, and packs an
// unpacked rootfs into a single-file squashfs image.
package unpack
