// Package configsmerger merges a StoredImage's metadata with the
// per-invocation CommandRun into the four inputs the bundle assembler
// needs: the command to execute, the container environment, the
// working directory, and the hooks block.
package configsmerger
