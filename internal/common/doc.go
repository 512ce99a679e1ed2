// Package common holds the shared value types that flow between the
// CLI, the repository, the configs merger, and the bundle assembler:
// the per-invocation Config and CommandRun, user identity, and the
// bind/device mount request variants.
package common
