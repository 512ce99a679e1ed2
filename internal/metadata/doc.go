// Package metadata extracts the fields the bundle assembler and
// configs merger need from an OCI image configuration, and persists
// them as the JSON sidecar stored next to each image's squashfs file.
package metadata
