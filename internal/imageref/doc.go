// Package imageref parses, renders, and derives canonical keys for
// container image references of the form
// "[server/][namespace/...]name[:tag][@digest]".
package imageref
